package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/matheus3301/evowpp/internal/app"
	"github.com/matheus3301/evowpp/internal/config"
	"github.com/matheus3301/evowpp/internal/configure"
	"github.com/matheus3301/evowpp/internal/conversation"
	"github.com/matheus3301/evowpp/internal/credentials"
	"github.com/matheus3301/evowpp/internal/lock"
	"github.com/matheus3301/evowpp/internal/probe"
	"github.com/matheus3301/evowpp/internal/provider"
	"github.com/matheus3301/evowpp/internal/session"
	"go.uber.org/fx"
)

const lifecycleTimeout = 15 * time.Second

// errReported means the command already printed why it failed.
var errReported = errors.New("command failed")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type cli struct {
	session  string
	jsonOut  bool
	out      io.Writer
	errOut   io.Writer
	sess     *session.Controller
	cc       *configure.Controller
	repo     credentials.Repository
	verifier *probe.Verifier
	cfg      *config.Config
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("evoctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	sessionFlag := fs.String("session", "", "session name (overrides config default)")
	jsonFlag := fs.Bool("json", false, "output in JSON format")
	verboseFlag := fs.Bool("verbose", false, "also write logs to stderr")
	fs.Usage = func() { printUsage(stderr) }
	if err := fs.Parse(args); err != nil {
		return 2
	}

	rest := fs.Args()
	if len(rest) == 0 {
		printUsage(stderr)
		return 2
	}

	sessionName, err := session.Resolve(*sessionFlag)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	c := &cli{session: sessionName, jsonOut: *jsonFlag, out: stdout, errOut: stderr}
	params := app.Params{SessionName: sessionName}
	if *verboseFlag {
		params.Console = stderr
	}
	fxApp := fx.New(
		app.Module(params),
		fx.Populate(&c.sess, &c.cc, &c.repo, &c.verifier, &c.cfg),
	)

	startCtx, cancel := context.WithTimeout(context.Background(), lifecycleTimeout)
	defer cancel()
	if err := fxApp.Start(startCtx); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), lifecycleTimeout)
		defer stopCancel()
		_ = fxApp.Stop(stopCtx)
	}()

	if err := c.dispatch(rest); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(stderr, "error: %v\n", err)
		}
		return 1
	}
	return 0
}

func (c *cli) dispatch(args []string) error {
	switch args[0] {
	case "status":
		return c.cmdStatus()
	case "config":
		if len(args) < 2 {
			return errors.New("usage: evoctl config <show|set>")
		}
		switch args[1] {
		case "show":
			return c.cmdConfigShow()
		case "set":
			return c.cmdConfigSet(args[2:])
		default:
			return fmt.Errorf("unknown config subcommand: %s", args[1])
		}
	case "verify":
		return c.cmdVerify()
	case "contacts":
		return c.cmdContacts()
	case "reset":
		return c.cmdReset()
	default:
		printUsage(c.errOut)
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: evoctl [--session <name>] [--json] [--verbose] <command>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "commands:")
	fmt.Fprintln(w, "  status                Show connection status")
	fmt.Fprintln(w, "  config show           Show the stored API settings")
	fmt.Fprintln(w, "  config set [flags]    Save API settings and test them")
	fmt.Fprintln(w, "      --base-url <url> --api-key <key> --instance <name>")
	fmt.Fprintln(w, "  verify                Test the stored settings")
	fmt.Fprintln(w, "  contacts              List contacts")
	fmt.Fprintln(w, "  reset                 Forget the stored settings")
}

type statusOutput struct {
	Session   string `json:"session"`
	Status    string `json:"status"`
	Reason    string `json:"reason,omitempty"`
	BaseURL   string `json:"base_url,omitempty"`
	Instance  string `json:"instance,omitempty"`
	UIRunning bool   `json:"ui_running"`
	UIPID     int    `json:"ui_pid,omitempty"`
}

func (c *cli) cmdStatus() error {
	st := c.sess.Status()
	out := statusOutput{
		Session: c.session,
		Status:  string(st.State),
		Reason:  st.Reason,
	}
	if cfg := c.sess.Config(); cfg != nil {
		out.BaseURL = cfg.BaseURL
		out.Instance = cfg.InstanceName
	}
	out.UIPID, out.UIRunning = lock.Holder(session.LockPath(c.session))

	if c.jsonOut {
		return c.outputJSON(out)
	}
	fmt.Fprintf(c.out, "Session:  %s\n", out.Session)
	fmt.Fprintf(c.out, "Status:   %s\n", st)
	if out.BaseURL != "" {
		fmt.Fprintf(c.out, "Base URL: %s\n", out.BaseURL)
		fmt.Fprintf(c.out, "Instance: %s\n", out.Instance)
	}
	if out.UIRunning {
		fmt.Fprintf(c.out, "UI:       running (PID %d)\n", out.UIPID)
	} else {
		fmt.Fprintln(c.out, "UI:       not running")
	}
	return nil
}

type configOutput struct {
	BaseURL  string `json:"base_url"`
	APIKey   string `json:"api_key"`
	Instance string `json:"instance"`
}

func (c *cli) cmdConfigShow() error {
	cfg, err := c.repo.Load()
	if err != nil {
		return err
	}
	if cfg == nil {
		if c.jsonOut {
			return c.outputJSON(nil)
		}
		fmt.Fprintln(c.out, "No settings stored.")
		return nil
	}
	out := configOutput{BaseURL: cfg.BaseURL, APIKey: cfg.MaskedAPIKey(), Instance: cfg.InstanceName}
	if c.jsonOut {
		return c.outputJSON(out)
	}
	fmt.Fprintf(c.out, "Base URL: %s\n", out.BaseURL)
	fmt.Fprintf(c.out, "API key:  %s\n", out.APIKey)
	fmt.Fprintf(c.out, "Instance: %s\n", out.Instance)
	return nil
}

type verifyOutput struct {
	Outcome    string `json:"outcome"`
	Reason     string `json:"reason,omitempty"`
	Result     string `json:"result,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`
	ElapsedMS  int64  `json:"elapsed_ms,omitempty"`
	Message    string `json:"message"`
}

// cmdConfigSet saves the given fields. Fields left out keep their stored
// value.
func (c *cli) cmdConfigSet(args []string) error {
	fs := flag.NewFlagSet("config set", flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	baseURL := fs.String("base-url", "", "Evolution API base URL")
	apiKey := fs.String("api-key", "", "Evolution API key")
	instance := fs.String("instance", "", "instance name")
	if err := fs.Parse(args); err != nil {
		return errReported
	}

	var input provider.Config
	if stored, err := c.repo.Load(); err != nil {
		return err
	} else if stored != nil {
		input = *stored
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "base-url":
			input.BaseURL = *baseURL
		case "api-key":
			input.APIKey = *apiKey
		case "instance":
			input.InstanceName = *instance
		}
	})

	res, err := c.cc.SaveAndVerify(context.Background(), input)
	if err != nil {
		return err
	}

	out := verifyOutput{Outcome: res.Outcome.String(), Reason: res.Reason}
	switch {
	case res.Outcome == configure.Rejected:
		out.Message = configure.TextIncomplete
	case res.Verification.OK():
		out.Message = configure.TextVerified
	default:
		out.Message = configure.FailureText(res.Verification)
	}
	if res.Outcome == configure.Accepted {
		out.Result = res.Verification.Kind.String()
		out.StatusCode = res.Verification.StatusCode
		out.ElapsedMS = res.Verification.Elapsed.Milliseconds()
	}
	return c.report(out, res.Outcome == configure.Accepted && res.Verification.OK())
}

// cmdVerify probes the stored settings without saving anything.
func (c *cli) cmdVerify() error {
	cfg, err := c.repo.Load()
	if err != nil {
		return err
	}
	if cfg == nil {
		return errors.New("no settings stored; run: evoctl config set")
	}

	res := c.verifier.Verify(context.Background(), *cfg, c.cfg.Timeout())
	out := verifyOutput{
		Outcome:    "checked",
		Result:     res.Kind.String(),
		StatusCode: res.StatusCode,
		ElapsedMS:  res.Elapsed.Milliseconds(),
		Message:    "Connection verified",
	}
	if !res.OK() {
		out.Message = "Connection failed: " + res.Classification()
	}
	return c.report(out, res.OK())
}

func (c *cli) report(out verifyOutput, ok bool) error {
	if c.jsonOut {
		if err := c.outputJSON(out); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(c.out, out.Message)
	}
	if !ok {
		return errReported
	}
	return nil
}

type contactOutput struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Unread   int    `json:"unread"`
	Online   bool   `json:"online"`
	LastSeen string `json:"last_activity"`
	Preview  string `json:"last_message"`
}

func (c *cli) cmdContacts() error {
	contacts := c.sess.Conversations().Contacts()
	if c.jsonOut {
		out := make([]contactOutput, 0, len(contacts))
		for _, ct := range contacts {
			out = append(out, toContactOutput(ct))
		}
		return c.outputJSON(out)
	}
	for _, ct := range contacts {
		presence := "offline"
		if ct.Online {
			presence = "online"
		}
		fmt.Fprintf(c.out, "%-3s %-20s %-16s %-7s unread:%d\n", ct.ID, ct.Name, ct.Phone, presence, ct.UnreadCount)
	}
	return nil
}

func toContactOutput(ct conversation.Contact) contactOutput {
	return contactOutput{
		ID:       ct.ID,
		Name:     ct.Name,
		Phone:    ct.Phone,
		Unread:   ct.UnreadCount,
		Online:   ct.Online,
		LastSeen: ct.LastActivityLabel,
		Preview:  ct.LastMessagePreview,
	}
}

func (c *cli) cmdReset() error {
	clearer, ok := c.repo.(credentials.Clearer)
	if !ok {
		return errors.New("settings store cannot be cleared")
	}
	if err := clearer.Clear(); err != nil {
		return err
	}
	c.sess.Reset()
	if c.jsonOut {
		return c.outputJSON(map[string]string{"status": string(c.sess.Status().State)})
	}
	fmt.Fprintln(c.out, "Settings cleared.")
	return nil
}

func (c *cli) outputJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("json encode: %w", err)
	}
	return nil
}
