package cli

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"
)

// Status prints who is logged in, when the access token expires, which
// session keys are stored (names only) and the state of the connection.
func (a *App) Status(ctx context.Context) error {
	if a.loggedIn {
		fmt.Fprintf(a.out, "Logged in as %s\n", a.userName)
		if exp, ok := a.authService.AccessExpiry(ctx); ok {
			fmt.Fprintf(a.out, "Access token expires %s\n", exp.Local().Format(time.DateTime))
		}
		fmt.Fprintf(a.out, "Entries loaded: %d\n", len(a.entries))
	} else {
		fmt.Fprintln(a.out, "Not logged in")
	}

	keys := a.authService.StoredKeys(ctx)
	if len(keys) == 0 {
		fmt.Fprintln(a.out, "Stored session keys: none")
	} else {
		fmt.Fprintf(a.out, "Stored session keys: %s\n", strings.Join(keys, ", "))
	}

	fmt.Fprintf(a.out, "Server %s (%s)\n", a.config.BaseURL, a.apiClient.State())
	return nil
}

// Stats prints the request counters collected since start.
func (a *App) Stats(ctx context.Context) error {
	var buf bytes.Buffer
	if err := a.metrics.WriteSummary(&buf); err != nil {
		a.logger.Warn(ctx, "write stats", "error", err)
		return err
	}
	if buf.Len() == 0 {
		fmt.Fprintln(a.out, "No requests yet")
		return nil
	}
	_, err := buf.WriteTo(a.out)
	return err
}
