package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/spf13/pflag"

	"github.com/SlpAus/quiz-share-backend/internal/api"
	"github.com/SlpAus/quiz-share-backend/internal/bookmark"
	"github.com/SlpAus/quiz-share-backend/internal/question"
	"github.com/SlpAus/quiz-share-backend/internal/user"
)

const usage = `usage: quizctl [--config dir] [--sqlite-path file] <command> [flags]

commands:
  register --name N --email E --password P
  login --email E --password P
  logout
  whoami
  list
  show <id>
  vote <id>
  bookmark <id>
  bookmarks
  add --text T --a A --b B --c C --d D --correct X [--category C] [--difficulty D]
  import <file.yaml>`

var errUsage = errors.New(usage)

type cli struct {
	client *api.Client
	out    io.Writer
}

func (c *cli) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "register":
		return c.register(ctx, rest)
	case "login":
		return c.login(ctx, rest)
	case "logout":
		if err := c.client.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(c.out, "logged out")
		return nil
	case "whoami":
		return c.whoami()
	case "list":
		return c.get(ctx, "/questions")
	case "show":
		id, err := idArg(rest)
		if err != nil {
			return err
		}
		return c.get(ctx, "/questions/"+id)
	case "vote":
		id, err := idArg(rest)
		if err != nil {
			return err
		}
		return c.post(ctx, "/questions/"+id+"/vote", nil)
	case "bookmark":
		id, err := idArg(rest)
		if err != nil {
			return err
		}
		n, _ := strconv.Atoi(id)
		return c.post(ctx, "/users/bookmark", bookmark.AddRequest{QuestionID: n})
	case "bookmarks":
		return c.get(ctx, "/users/bookmarks")
	case "add":
		return c.add(ctx, rest)
	case "import":
		return c.importFile(ctx, rest)
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}

func idArg(args []string) (string, error) {
	if len(args) != 1 {
		return "", errUsage
	}
	if _, err := strconv.Atoi(args[0]); err != nil {
		return "", fmt.Errorf("invalid id %q", args[0])
	}
	return args[0], nil
}

func (c *cli) print(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) get(ctx context.Context, path string) error {
	resp, err := c.client.Get(ctx, path)
	if err != nil {
		return err
	}
	return c.print(resp.Data)
}

func (c *cli) post(ctx context.Context, path string, body any) error {
	resp, err := c.client.Post(ctx, path, body)
	if err != nil {
		return err
	}
	return c.print(resp.Data)
}

func (c *cli) register(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("register", pflag.ContinueOnError)
	var req user.RegisterRequest
	fs.StringVar(&req.Name, "name", "", "display name")
	fs.StringVar(&req.Email, "email", "", "email address")
	fs.StringVar(&req.Password, "password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	res, err := c.client.Register(ctx, req)
	if errors.Is(err, api.ErrSessionNotSaved) {
		// the token is valid server-side; show it so it is not lost
		if perr := c.print(res); perr != nil {
			return perr
		}
	}
	if err != nil {
		return err
	}
	return c.print(res.User)
}

func (c *cli) login(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("login", pflag.ContinueOnError)
	var req user.LoginRequest
	fs.StringVar(&req.Email, "email", "", "email address")
	fs.StringVar(&req.Password, "password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	res, err := c.client.Login(ctx, req)
	if errors.Is(err, api.ErrSessionNotSaved) {
		// the token is valid server-side; show it so it is not lost
		if perr := c.print(res); perr != nil {
			return perr
		}
	}
	if err != nil {
		return err
	}
	return c.print(res.User)
}

func (c *cli) whoami() error {
	u := c.client.Session().User()
	if u == nil {
		fmt.Fprintln(c.out, "not logged in")
		return nil
	}
	return c.print(u)
}

func (c *cli) add(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("add", pflag.ContinueOnError)
	var req question.AddRequest
	fs.StringVar(&req.QuestionText, "text", "", "question text")
	fs.StringVar(&req.OptionA, "a", "", "option A")
	fs.StringVar(&req.OptionB, "b", "", "option B")
	fs.StringVar(&req.OptionC, "c", "", "option C")
	fs.StringVar(&req.OptionD, "d", "", "option D")
	fs.StringVar(&req.CorrectOption, "correct", "", "correct option (A-D)")
	fs.StringVar(&req.Category, "category", "", "category (default General)")
	fs.StringVar(&req.Difficulty, "difficulty", "", "Easy, Medium or Hard (default Medium)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return c.post(ctx, "/questions", req)
}

func (c *cli) importFile(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	reqs, err := loadQuestions(f)
	if err != nil {
		return err
	}
	added := 0
	for i, req := range reqs {
		if _, err := c.client.Post(ctx, "/questions", req); err != nil {
			return fmt.Errorf("question %d: %s (%d imported)", i+1, api.Message(err, err.Error()), added)
		}
		added++
	}
	fmt.Fprintf(c.out, "imported %d questions\n", added)
	return nil
}
