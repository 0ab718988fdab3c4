package commands

import (
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ripe-addrlist/ripe-addrlist/src/internal/log"
	"github.com/ripe-addrlist/ripe-addrlist/src/internal/mocks"
	"github.com/ripe-addrlist/ripe-addrlist/src/internal/remote"
)

func init() {
	log.DisableLogs()
}

const testConfig = `
[router]
host = "192.168.88.1"
username = "admin"

[address_list]
name = "RU"
batch_size = 2
pause_seconds = 0
`

type noPause struct{}

func (noPause) Wait(context.Context, time.Duration) error { return nil }

func newTestContext(t *testing.T, content string, channel remote.Channel, registry *mocks.MockRegistry) (*AppContext, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	out := &bytes.Buffer{}
	ctx := &AppContext{
		ConfigPath: path,
		Stdin:      strings.NewReader(""),
		Stdout:     out,
		Channel:    channel,
		Pacer:      noPause{},
		Version:    "test",
	}
	if registry != nil {
		ctx.Registry = registry
	}
	return ctx, out
}

func TestSyncCommand_ReplacesList(t *testing.T) {
	router := mocks.NewFakeRouter(map[string][]string{"RU": {"203.0.113.0/24"}})
	registry := &mocks.MockRegistry{Entries: []string{"2.56.88.0/22", "5.8.0.0-5.8.3.255", "31.3.0.0/16"}}
	ctx, _ := newTestContext(t, testConfig, router.Channel(), registry)

	cmd := CreateSyncCommand()
	if err := cmd.Init([]string{"-no-prompt"}, ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	got := router.List("RU")
	want := []string{"2.56.88.0/22", "5.8.0.0/22", "31.3.0.0/16"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("expected list %v, got %v", want, got)
	}
	if countries := registry.Countries(); len(countries) != 1 || countries[0] != "RU" {
		t.Errorf("unexpected registry requests %v", countries)
	}
}

func TestSyncCommand_PromptsForMissingTarget(t *testing.T) {
	channel := mocks.NewMockChannel()
	registry := &mocks.MockRegistry{Entries: []string{"10.0.0.0/8"}}
	ctx, _ := newTestContext(t, "", channel, registry)
	ctx.Stdin = strings.NewReader("10.0.0.1\nops\n\n")

	cmd := CreateSyncCommand()
	if err := cmd.Init(nil, ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	calls := channel.Calls()
	if len(calls) != 2 {
		t.Fatalf("expected clear and one batch, got %d calls", len(calls))
	}
	ep := calls[0].Endpoint
	if ep.Host != "10.0.0.1" || ep.User != "ops" {
		t.Errorf("unexpected endpoint %+v", ep)
	}
	if !strings.Contains(calls[0].Payload, `list="RU"`) {
		t.Errorf("expected default list name, got %q", calls[0].Payload)
	}
}

func TestSyncCommand_NoPromptRequiresTarget(t *testing.T) {
	ctx, _ := newTestContext(t, "", mocks.NewMockChannel(), &mocks.MockRegistry{})

	cmd := CreateSyncCommand()
	if err := cmd.Init([]string{"-no-prompt"}, ctx); err == nil {
		t.Fatal("expected error for missing router host")
	}
}

func TestSyncCommand_ReportsRemoteFailure(t *testing.T) {
	router := mocks.NewFakeRouter(nil)
	router.FailScript = func(n int) *remote.Result {
		if n == 2 {
			return &remote.Result{ExitCode: 1, Stderr: "failure: already have such entry"}
		}
		return nil
	}
	registry := &mocks.MockRegistry{Entries: []string{"1.0.0.0/24", "2.0.0.0/24", "3.0.0.0/24", "4.0.0.0/24"}}
	ctx, _ := newTestContext(t, testConfig, router.Channel(), registry)

	cmd := CreateSyncCommand()
	if err := cmd.Init([]string{"-no-prompt"}, ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	err := cmd.Run()
	if err == nil {
		t.Fatal("expected error from failed batch")
	}
	if !strings.Contains(err.Error(), "already have such entry") {
		t.Errorf("expected remote stderr in error, got %v", err)
	}
	if got := router.List("RU"); len(got) != 2 {
		t.Errorf("expected first batch to remain, got %v", got)
	}
}

func TestSyncCommand_DryRunDoesNotTouchRouter(t *testing.T) {
	channel := mocks.NewMockChannel()
	registry := &mocks.MockRegistry{Entries: []string{"1.0.0.0/24", "2.0.0.0/24", "3.0.0.0/24"}}
	ctx, out := newTestContext(t, testConfig, channel, registry)

	cmd := CreateSyncCommand()
	if err := cmd.Init([]string{"-dry-run"}, ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(channel.Calls()) != 0 {
		t.Errorf("dry run must not contact the router, got %d calls", len(channel.Calls()))
	}
	text := out.String()
	if !strings.Contains(text, "3 CIDR blocks in 2 batch(es)") {
		t.Errorf("unexpected plan output:\n%s", text)
	}
	if !strings.Contains(text, "batch 2: CIDR 3-3 (3.0.0.0/24 .. 3.0.0.0/24)") {
		t.Errorf("unexpected plan output:\n%s", text)
	}
}

func TestFetchCommand(t *testing.T) {
	defer log.SetForceStdErr(false)

	registry := &mocks.MockRegistry{Entries: []string{"10.0.0.0-10.0.0.255", "bogus", "192.0.2.0/24"}}

	t.Run("Prints CIDRs", func(t *testing.T) {
		ctx, out := newTestContext(t, testConfig, nil, registry)
		cmd := CreateFetchCommand()
		if err := cmd.Init([]string{"-country", "de"}, ctx); err != nil {
			t.Fatalf("Init failed: %v", err)
		}
		if err := cmd.Run(); err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if out.String() != "10.0.0.0/24\n192.0.2.0/24\n" {
			t.Errorf("unexpected output %q", out.String())
		}
		countries := registry.Countries()
		if countries[len(countries)-1] != "DE" {
			t.Errorf("expected upper-cased country, got %v", countries)
		}
	})

	t.Run("Prints fingerprint", func(t *testing.T) {
		ctx, out := newTestContext(t, testConfig, nil, registry)
		cmd := CreateFetchCommand()
		if err := cmd.Init([]string{"-fingerprint"}, ctx); err != nil {
			t.Fatalf("Init failed: %v", err)
		}
		if err := cmd.Run(); err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if got := strings.TrimSpace(out.String()); len(got) != 32 {
			t.Errorf("expected an MD5 hex digest, got %q", got)
		}
	})
}

type staticLookup map[string]string

func (l staticLookup) CountryCode(ip net.IP) (string, error) {
	if code, ok := l[ip.String()]; ok {
		return code, nil
	}
	return "", nil
}

func TestAuditCommand(t *testing.T) {
	registry := &mocks.MockRegistry{Entries: []string{"1.0.0.0/24", "2.0.0.0/24", "3.0.0.0/24"}}
	ctx, out := newTestContext(t, testConfig, nil, registry)

	cmd := CreateAuditCommand()
	cmd.lookup = staticLookup{"1.0.0.0": "RU", "2.0.0.0": "NL"}
	if err := cmd.Init(nil, ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	text := out.String()
	if !strings.Contains(text, "2.0.0.0/24\tNL\n") {
		t.Errorf("expected mismatch line, got:\n%s", text)
	}
	if !strings.Contains(text, "# 3 checked, 1 in RU") {
		t.Errorf("unexpected summary:\n%s", text)
	}
}

func TestAuditCommand_RequiresDatabase(t *testing.T) {
	ctx, _ := newTestContext(t, testConfig, nil, &mocks.MockRegistry{})

	if err := CreateAuditCommand().Init(nil, ctx); err == nil {
		t.Fatal("expected error without a geoip database")
	}
}

func TestConfigCommand(t *testing.T) {
	t.Run("Prints effective configuration", func(t *testing.T) {
		ctx, out := newTestContext(t, testConfig, nil, nil)
		cmd := CreateConfigCommand()
		if err := cmd.Init(nil, ctx); err != nil {
			t.Fatalf("Init failed: %v", err)
		}
		if err := cmd.Run(); err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		text := out.String()
		for _, want := range []string{"[router]", "192.168.88.1", "batch_size = 2", "schedule = "} {
			if !strings.Contains(text, want) {
				t.Errorf("expected %q in output:\n%s", want, text)
			}
		}
	})

	t.Run("Writes configuration", func(t *testing.T) {
		ctx, out := newTestContext(t, "", nil, nil)
		if err := os.Remove(ctx.ConfigPath); err != nil {
			t.Fatal(err)
		}
		cmd := CreateConfigCommand()
		if err := cmd.Init([]string{"-write"}, ctx); err != nil {
			t.Fatalf("Init failed: %v", err)
		}
		if err := cmd.Run(); err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if out.Len() != 0 {
			t.Errorf("expected no stdout output, got %q", out.String())
		}
		data, err := os.ReadFile(ctx.ConfigPath)
		if err != nil {
			t.Fatalf("config was not written: %v", err)
		}
		if !strings.Contains(string(data), "[address_list]") {
			t.Errorf("unexpected config content:\n%s", data)
		}
	})
}

func TestServiceCommand_RunsOnStart(t *testing.T) {
	router := mocks.NewFakeRouter(nil)
	registry := &mocks.MockRegistry{Entries: []string{"1.0.0.0/24", "2.0.0.0/24", "3.0.0.0/24"}}
	ctx, _ := newTestContext(t, testConfig, router.Channel(), registry)

	cmd := CreateServiceCommand()
	if err := cmd.Init([]string{"-no-api"}, ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	signals, cancel := context.WithCancel(context.Background())
	defer cancel()
	cmd.signals = signals

	go func() {
		deadline := time.Now().Add(5 * time.Second)
		for time.Now().Before(deadline) && len(router.List("RU")) < 3 {
			time.Sleep(10 * time.Millisecond)
		}
		cancel()
	}()

	if err := cmd.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := router.List("RU"); len(got) != 3 {
		t.Errorf("expected initial run to fill the list, got %v", got)
	}
}

func TestServiceCommand_RejectsInvalidSchedule(t *testing.T) {
	content := testConfig + "\n[service]\nschedule = \"every tuesday\"\n"
	ctx, _ := newTestContext(t, content, mocks.NewMockChannel(), &mocks.MockRegistry{})

	if err := CreateServiceCommand().Init(nil, ctx); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
}
