// Package notify mails a model-corruption warning to the project's
// configured recipients. Absent configuration is a silent no-op so the
// batch run never fails on notification plumbing.
package notify

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/bimops/rvtbatch/internal/config"
)

const defaultPort = 25

// Notify sends the corruption warning for one project. targets is the
// [notify.<project>] map from the file config.
func Notify(targets map[string]config.MailTarget, projectCode, modelPath, journalExcerpt string) error {
	t, ok := targets[projectCode]
	if !ok || t.Server == "" {
		return nil
	}
	port := t.Port
	if port <= 0 {
		port = defaultPort
	}

	subject := fmt.Sprintf("%s - rvt model corrupt!!", projectCode)
	body := fmt.Sprintf("warning - rvt model %s at path %s is corrupt!\nsee journal: %s",
		projectCode, modelPath, journalExcerpt)

	msg := strings.Join([]string{
		"From: " + t.Sender,
		"To: " + t.Receiver,
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", t.Server, port)
	recipients := strings.Split(t.Receiver, ",")
	for i := range recipients {
		recipients[i] = strings.TrimSpace(recipients[i])
	}
	if err := smtp.SendMail(addr, nil, t.Sender, recipients, []byte(msg)); err != nil {
		return fmt.Errorf("send corruption mail for %s: %w", projectCode, err)
	}
	return nil
}
