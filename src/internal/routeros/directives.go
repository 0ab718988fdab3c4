// Package routeros renders the RouterOS console directives used to maintain a firewall
// address-list.
package routeros

import (
	"strings"

	"github.com/valyala/fasttemplate"
)

const (
	TmplList    = "list"
	TmplAddress = "address"
	TmplComment = "comment"

	// DefaultComment tags every entry added by ripe-addrlist.
	DefaultComment = "Auto-generated from RIPE"

	clearTemplate = `/ip firewall address-list remove [find list="{{list}}"]`
	addTemplate   = `/ip firewall address-list add list="{{list}}" address="{{address}}" comment="{{comment}}"`
)

var (
	clearTmpl = fasttemplate.New(clearTemplate, "{{", "}}")
	addTmpl   = fasttemplate.New(addTemplate, "{{", "}}")
)

// ClearDirective returns the directive removing every entry of the list.
func ClearDirective(listName string) string {
	return clearTmpl.ExecuteString(map[string]interface{}{
		TmplList: listName,
	})
}

// AddDirective returns the directive adding one address to the list.
func AddDirective(listName, address, comment string) string {
	return addTmpl.ExecuteString(map[string]interface{}{
		TmplList:    listName,
		TmplAddress: address,
		TmplComment: comment,
	})
}

// AddScript returns one newline-terminated add directive per address.
func AddScript(listName string, addresses []string, comment string) string {
	var sb strings.Builder
	for _, address := range addresses {
		sb.WriteString(AddDirective(listName, address, comment))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// IsSafeValue reports whether s can be embedded in a quoted directive argument as-is.
// Quotes, backslashes, variable sigils and control characters are rejected.
func IsSafeValue(s string) bool {
	for _, r := range s {
		if r < 0x20 || r == 0x7f || r == '"' || r == '\\' || r == '$' {
			return false
		}
	}
	return true
}
