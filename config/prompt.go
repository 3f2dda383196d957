package config

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompt asks the user for a new configuration, reading answers line by line from in.
//
// The token is asked again as long as check rejects it. The other answers are not
// verified beyond being present when mandatory.
func Prompt(in io.Reader, out io.Writer, check func(token string) error) (Config, error) {
	scanner := bufio.NewScanner(in)
	ask := func(question string, mandatory bool) (string, error) {
		for {
			fmt.Fprintf(out, "%s: ", question)
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil {
					return "", err
				}
				return "", io.ErrUnexpectedEOF
			}
			answer := strings.TrimSpace(scanner.Text())
			if answer != "" || !mandatory {
				return answer, nil
			}
			fmt.Fprintln(out, "A value is required.")
		}
	}

	var c Config
	var err error
	for _, q := range []struct {
		question  string
		mandatory bool
		field     *string
	}{
		{"Enter data directory", true, &c.DataDir},
		{"Enter server URL", true, &c.ServerURL},
		{"Enter password", true, &c.Password},
		{"Enter ledger account id", false, &c.AccountID},
		{"Enter budget id", false, &c.BudgetID},
	} {
		if *q.field, err = ask(q.question, q.mandatory); err != nil {
			return Config{}, fmt.Errorf("configuration aborted: %w", err)
		}
	}

	for {
		if c.Token, err = ask("Enter Trading212 API token", true); err != nil {
			return Config{}, fmt.Errorf("configuration aborted: %w", err)
		}
		if check == nil {
			break
		}
		err := check(c.Token)
		if err == nil {
			break
		}
		fmt.Fprintf(out, "Invalid token (%v). Please try again.\n", err)
	}
	return c, nil
}
