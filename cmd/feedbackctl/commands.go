package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/cheynewallace/tabby"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/vnkhanh/feedback-server/client"
)

func requireArg(c *cli.Context, name string) (string, error) {
	v := c.Args().First()
	if v == "" {
		return "", errors.Errorf("missing <%s> argument", name)
	}
	return v, nil
}

func Login() cli.Command {
	const (
		usernameFlagName = "username"
		passwordFlagName = "password"
	)
	return cli.Command{
		Name:  "login",
		Usage: "sign in and print a token to export as FEEDBACK_TOKEN",
		Flags: []cli.Flag{
			cli.StringFlag{Name: usernameFlagName, Usage: "admin username"},
			cli.StringFlag{Name: passwordFlagName, Usage: "admin password", EnvVar: "FEEDBACK_PASSWORD"},
		},
		Action: func(c *cli.Context) error {
			res, err := newClient(c).Login(context.Background(), c.String(usernameFlagName), c.String(passwordFlagName))
			if err != nil {
				return err
			}
			fmt.Printf("signed in as %s\n", res.User.Username)
			fmt.Printf("export FEEDBACK_TOKEN=%s\n", res.Token)
			return nil
		},
	}
}

func Forms() cli.Command {
	const (
		typeFlagName   = "type"
		activeFlagName = "active"
		searchFlagName = "search"
	)
	return cli.Command{
		Name:  "forms",
		Usage: "list your feedback forms",
		Flags: []cli.Flag{
			cli.StringFlag{Name: typeFlagName, Usage: "only forms of this form type"},
			cli.StringFlag{Name: activeFlagName, Usage: "true or false to filter on the active flag"},
			cli.StringFlag{Name: searchFlagName, Usage: "substring of title or description"},
		},
		Action: func(c *cli.Context) error {
			filter := client.FormFilter{FormType: c.String(typeFlagName), Search: c.String(searchFlagName)}
			if v := c.String(activeFlagName); v != "" {
				active, err := strconv.ParseBool(v)
				if err != nil {
					return errors.Wrapf(err, "invalid --%s", activeFlagName)
				}
				filter.IsActive = &active
			}
			forms, err := newClient(c).ListForms(context.Background(), filter)
			if err != nil {
				return err
			}
			if len(forms) == 0 {
				fmt.Println("no forms yet")
				return nil
			}
			t := tabby.New()
			t.AddHeader("ID", "TITLE", "TYPE", "ACTIVE", "RESPONSES", "CREATED")
			for _, f := range forms {
				active := "yes"
				if !f.IsActive {
					active = "no"
				} else if f.IsExpired {
					active = "expired"
				}
				t.AddLine(f.ID, f.Title, f.FormType, active, f.ResponseCount, humanize.Time(f.CreatedAt))
			}
			t.Print()
			return nil
		},
	}
}

func Analytics() cli.Command {
	return cli.Command{
		Name:      "analytics",
		Usage:     "show the analytics of a form",
		ArgsUsage: "<form-id>",
		Action: func(c *cli.Context) error {
			id, err := requireArg(c, "form-id")
			if err != nil {
				return err
			}
			a, err := newClient(c).Analytics(context.Background(), id)
			if err != nil {
				return err
			}
			fmt.Printf("%s\n", a.FormTitle)
			fmt.Printf("responses: %d total, %d in the last 30 days\n", a.TotalResponses, a.RecentResponses)
			fmt.Printf("completion rate: %.0f%%\n", a.CompletionRate*100)
			if a.AverageRating != nil {
				fmt.Printf("average rating: %.2f\n", *a.AverageRating)
			}
			fmt.Println()

			t := tabby.New()
			t.AddHeader("QUESTION", "TYPE", "ANSWERS", "RATE", "AVERAGE", "TOP")
			for _, q := range a.QuestionAnalytics {
				avg := "-"
				if q.AverageRating != nil {
					avg = fmt.Sprintf("%.2f", *q.AverageRating)
				}
				top := "-"
				if len(q.TopAnswers) > 0 {
					top = q.TopAnswers[0]
				}
				t.AddLine(q.QuestionText, q.QuestionType, q.ResponseCount,
					fmt.Sprintf("%.0f%%", q.ResponseRate*100), avg, top)
			}
			t.Print()
			return nil
		},
	}
}

func ShareLink() cli.Command {
	return cli.Command{
		Name:      "share-link",
		Usage:     "print the public link of a form",
		ArgsUsage: "<form-id>",
		Action: func(c *cli.Context) error {
			id, err := requireArg(c, "form-id")
			if err != nil {
				return err
			}
			link, err := newClient(c).ShareLink(context.Background(), id)
			if err != nil {
				return err
			}
			fmt.Println(link.ShareableLink)
			return nil
		},
	}
}

func Responses() cli.Command {
	const (
		formFlagName     = "form"
		typeFlagName     = "type"
		fromFlagName     = "from"
		toFlagName       = "to"
		watchFlagName    = "watch"
		intervalFlagName = "interval"
	)
	return cli.Command{
		Name:  "responses",
		Usage: "list responses to your forms",
		Flags: []cli.Flag{
			cli.StringFlag{Name: formFlagName, Usage: "only responses to this form id"},
			cli.StringFlag{Name: typeFlagName, Usage: "only responses to forms of this type"},
			cli.StringFlag{Name: fromFlagName, Usage: "first day, YYYY-MM-DD"},
			cli.StringFlag{Name: toFlagName, Usage: "last day, YYYY-MM-DD"},
			cli.BoolFlag{Name: watchFlagName, Usage: "keep polling and reprint on change"},
			cli.DurationFlag{Name: intervalFlagName, Usage: "poll interval with --watch", Value: 30 * time.Second},
		},
		Action: func(c *cli.Context) error {
			feed := client.NewResponseFeed(newClient(c), client.ResponseQuery{
				FormID:   c.String(formFlagName),
				FormType: c.String(typeFlagName),
				DateFrom: c.String(fromFlagName),
				DateTo:   c.String(toFlagName),
			})

			if !c.Bool(watchFlagName) {
				if _, err := feed.Refresh(context.Background()); err != nil {
					return err
				}
				page, _ := feed.Snapshot()
				printResponses(page)
				return nil
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			feed.OnUpdate = func(page client.ResponsePage) {
				fmt.Printf("\n== %s ==\n", time.Now().Format("15:04:05"))
				printResponses(page)
			}
			err := feed.Run(ctx, c.Duration(intervalFlagName))
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}

func printResponses(page client.ResponsePage) {
	fmt.Printf("%d responses\n", page.Count)
	if len(page.Results) == 0 {
		return
	}
	t := tabby.New()
	t.AddHeader("ID", "FORM", "TYPE", "SUBMITTED", "ANSWERS")
	for _, r := range page.Results {
		t.AddLine(r.ID, r.FormTitle, r.FormType, humanize.Time(r.SubmittedAt), len(r.Answers))
	}
	t.Print()
}

func PublicForms() cli.Command {
	return cli.Command{
		Name:  "public-forms",
		Usage: "list forms open for submissions",
		Action: func(c *cli.Context) error {
			forms, err := newClient(c).PublicForms(context.Background())
			if err != nil {
				return err
			}
			t := tabby.New()
			t.AddHeader("ID", "TITLE", "TYPE", "QUESTIONS", "EXPIRES")
			for _, f := range forms {
				expires := "never"
				if f.ExpiresAt != nil {
					expires = humanize.Time(*f.ExpiresAt)
				}
				t.AddLine(f.ID, f.Title, f.FormType, len(f.Questions), expires)
			}
			t.Print()
			return nil
		},
	}
}
