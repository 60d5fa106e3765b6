package flow

import (
	"context"
	"fmt"
	"strings"

	"steampool/internal/conversation"
	"steampool/internal/domain"
	"steampool/internal/probe"

	"go.uber.org/zap"
)

// maxBatch bounds how many lines one bulk check probes
const maxBatch = 30

// batchLine is one "login:password" line of a bulk check
type batchLine struct {
	Login  string
	Secret string
}

// parseBatch reads one login:password pair per line. Lines without a colon
// or with an empty half are skipped; the password may contain colons.
func parseBatch(text string) []batchLine {
	var out []batchLine
	for _, line := range strings.Split(text, "\n") {
		login, secret, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		login, secret = strings.TrimSpace(login), strings.TrimSpace(secret)
		if login == "" || secret == "" {
			continue
		}
		out = append(out, batchLine{Login: login, Secret: secret})
	}
	return out
}

// handleBatch probes the pasted accounts one by one, keeping the panel
// updated with the report so far
func (f *Flows) handleBatch(ctx context.Context, t *conversation.Turn, in conversation.Input) conversation.Transition {
	t.Consume(ctx, in)

	lines := parseBatch(in.Text)
	if len(lines) == 0 {
		t.Show(ctx, prompt(textBatchEmpty, textEnterBatch), domain.NewKeyboard(cancelButton(keyBackToMenu)))
		return conversation.Next(t.Step)
	}

	skipped := 0
	if len(lines) > maxBatch {
		skipped = len(lines) - maxBatch
		lines = lines[:maxBatch]
	}

	var report strings.Builder
	report.WriteString(textBatchHeader)
	valid := 0
	for _, line := range lines {
		if !t.Live() || ctx.Err() != nil {
			return conversation.Done()
		}
		text, kb := batchProgress(report.String(), line.Login)
		t.Show(ctx, text, kb)

		res := f.prober.Check(ctx, line.Login, line.Secret)
		if res.Outcome == probe.Valid {
			valid++
		}
		fmt.Fprintf(&report, "Логин: %s\nСтатус: %s\n\n", line.Login, describe(res))
	}

	f.logger.Info("Bulk check finished",
		zap.Int64("user_id", t.UserID),
		zap.Int("checked", len(lines)),
		zap.Int("valid", valid),
		zap.Int("skipped", skipped),
	)
	text, kb := batchResultScreen(report.String(), skipped)
	t.Show(ctx, text, kb)
	return conversation.Done()
}
