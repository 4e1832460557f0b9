package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkuznecovs/billfold/internal/client/config"
	"github.com/mkuznecovs/billfold/internal/logging"

	_ "modernc.org/sqlite"
)

func testConfig() *config.Config {
	return &config.Config{
		ServerEndpointAddr:  "http://127.0.0.1:1",
		DatabasePath:        ":memory:",
		OnlineCheckInterval: time.Hour,
		RequestTimeout:      200 * time.Millisecond,
	}
}

type testLogger struct{}

func (testLogger) Debug(context.Context, string, ...any) {}
func (testLogger) Info(context.Context, string, ...any)  {}
func (testLogger) Warn(context.Context, string, ...any)  {}
func (testLogger) Error(context.Context, string, ...any) {}
func (l testLogger) With(...any) logging.Logger          { return l }

// An entire offline session: add a client, create an invoice for it with a
// line item, record a payment. The backend is unreachable the whole time.
func TestApp_OfflineSession(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig(), testLogger{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	script := strings.Join([]string{
		"client add",
		"Acme",            // name
		"billing@acme.io", // email
		"",                // phone
		"",                // address
		"client list",
		"invoice add",
		"Acme",       // client name
		"INV-001",    // number
		"2026-09-30", // due date
		"",           // notes
		"design",     // item 1 description
		"2",          // quantity
		"100",        // unit price
		"",           // finish items
		"invoice list",
		"expense add",
		"fuel",
		"travel",
		"42.50",
		"",
		"expense list",
		"exit",
	}, "\n") + "\n"

	var out bytes.Buffer
	app.SetIO(strings.NewReader(script), &out)
	app.Run(context.Background())

	got := out.String()
	assert.Contains(t, got, "Added client Acme")
	assert.Contains(t, got, "Created invoice INV-001")
	assert.Contains(t, got, "200.00")
	assert.Contains(t, got, "fuel")
	assert.Contains(t, got, "[pending]")
	assert.Contains(t, got, "Bye!")
}

func TestApp_UnknownClientCreatedOnInvoice(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig(), testLogger{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	script := strings.Join([]string{
		"invoice add",
		"Globex", // never added explicitly
		"INV-002",
		"",
		"",
		"", // no items
		"client list",
		"exit",
	}, "\n") + "\n"

	var out bytes.Buffer
	app.SetIO(strings.NewReader(script), &out)
	app.Run(context.Background())

	assert.Contains(t, out.String(), "Globex")
}
