// Command feedbackctl is a terminal client for the feedback server.
package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/vnkhanh/feedback-server/client"
)

const (
	serverFlagName = "server"
	tokenFlagName  = "token"
)

func main() {
	app := cli.NewApp()
	app.Name = "feedbackctl"
	app.Usage = "manage feedback forms and read their results"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   serverFlagName,
			Usage:  "base URL of the feedback server",
			Value:  "http://localhost:8080",
			EnvVar: "FEEDBACK_SERVER",
		},
		cli.StringFlag{
			Name:   tokenFlagName,
			Usage:  "bearer token from `feedbackctl login`",
			EnvVar: "FEEDBACK_TOKEN",
		},
	}
	app.Commands = []cli.Command{
		Login(),
		Forms(),
		Analytics(),
		ShareLink(),
		Responses(),
		PublicForms(),
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, describeError(err))
		os.Exit(1)
	}
}

func newClient(c *cli.Context) *client.Client {
	return client.New(c.GlobalString(serverFlagName), c.GlobalString(tokenFlagName))
}

// describeError turns a failed call into the line shown to the user,
// chosen by error category alone.
func describeError(err error) string {
	var cerr *client.Error
	if !errors.As(err, &cerr) {
		return "error: " + err.Error()
	}
	switch cerr.Kind {
	case client.KindAuthRequired:
		return "not signed in or session expired; run `feedbackctl login`"
	case client.KindNotFound:
		return "not found"
	case client.KindValidation:
		if len(cerr.Fields) == 0 {
			return "invalid input: " + cerr.Message
		}
		keys := make([]string, 0, len(cerr.Fields))
		for k := range cerr.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		lines := []string{"invalid input:"}
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf("  %s: %s", k, cerr.Fields[k]))
		}
		return strings.Join(lines, "\n")
	case client.KindNetwork:
		return "could not reach the server: " + cerr.Err.Error()
	default:
		return fmt.Sprintf("request failed (%d): %s", cerr.Status, cerr.Message)
	}
}
