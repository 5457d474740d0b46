package commands

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/manifoldco/promptui"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"tableflip.dev/focussync/pkg/app"
	"tableflip.dev/focussync/pkg/commands/options"
	"tableflip.dev/focussync/pkg/onboarding"
	"tableflip.dev/focussync/pkg/printers"
	"tableflip.dev/focussync/pkg/wallet"
)

func addWallet(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "manage the custodial wallet used for group payments",
		Long: `Wallet talks to the app server and the wallet SDK. With the default
fallback policy most operations still succeed when the server is down,
returning placeholder data marked as a fallback. Use --strict to fail instead.`,
	}
	options.AddWalletArgs(cmd, walletOpts)

	addWalletInit(cmd)
	addWalletCreate(cmd)
	addWalletImport(cmd)
	addWalletLogin(cmd)
	addWalletBalance(cmd)
	addWalletTransfer(cmd)
	addWalletOnboard(cmd)
	topLevel.AddCommand(cmd)
}

func newWalletClient(component string) (env, *wallet.Client, error) {
	e, err := loadEnv(component)
	if err != nil {
		return env{}, nil, err
	}
	r := promptResponder{}
	return e, e.walletClient(r, r), nil
}

func printKV(rows ...[2]string) {
	bold := color.New(color.Bold)
	tbl := uitable.New()
	tbl.Separator = "  "
	for _, r := range rows {
		tbl.AddRow(bold.Sprint(r[0]), r[1])
	}
	_, _ = fmt.Fprintln(color.Output, tbl)
}

func fallbackNote(fallback bool) {
	if fallback {
		_, _ = color.New(color.FgYellow).Fprintln(color.Output, "(server unreachable, placeholder data)")
	}
}

func addWalletInit(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "fetch the app id and start the wallet SDK",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, c, err := newWalletClient("wallet")
			if err != nil {
				return err
			}
			res, err := c.Initialize(cmd.Context())
			if err != nil {
				return output.HandleError(err)
			}
			if output.JSON {
				return output.Print(res)
			}
			printKV([2]string{"App ID", res.AppID})
			fallbackNote(res.Fallback)
			return nil
		},
	}
	options.AddOutputArg(cmd, output)
	parent.AddCommand(cmd)
}

func addWalletCreate(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "create a new wallet user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, c, err := newWalletClient("wallet")
			if err != nil {
				return err
			}
			if _, err := c.Initialize(cmd.Context()); err != nil {
				return output.HandleError(err)
			}
			res, err := c.CreateUser(cmd.Context())
			if err != nil {
				return output.HandleError(err)
			}
			if output.JSON {
				return output.Print(res)
			}
			printKV(
				[2]string{"User ID", res.UserID},
				[2]string{"Wallet ready", fmt.Sprint(res.WalletInitialized)},
			)
			fallbackNote(res.Fallback)
			return nil
		},
	}
	options.AddOutputArg(cmd, output)
	parent.AddCommand(cmd)
}

func addWalletImport(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "import <user-id>",
		Short: "sign in as an existing wallet user and list their wallets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, c, err := newWalletClient("wallet")
			if err != nil {
				return err
			}
			if _, err := c.Initialize(cmd.Context()); err != nil {
				return output.HandleError(err)
			}
			res, err := c.ImportWallet(cmd.Context(), args[0])
			if err != nil {
				return output.HandleError(err)
			}
			if output.JSON {
				return output.Print(res)
			}
			pp := &printers.PrettyPrint{}
			pp.Wallets(res.UserID, res.Wallets...)
			if res.Message != "" {
				_, _ = fmt.Fprintln(color.Output, res.Message)
			}
			fallbackNote(res.Fallback)
			return nil
		},
	}
	options.AddOutputArg(cmd, output)
	parent.AddCommand(cmd)
}

func addWalletLogin(parent *cobra.Command) {
	method := string(onboarding.MethodEmail)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "sign in with email or Google and list wallets",
		Example: `
focussync wallet login
focussync wallet login --method google
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			_, c, err := newWalletClient("wallet")
			if err != nil {
				return err
			}
			if _, err := c.Initialize(ctx); err != nil {
				return output.HandleError(err)
			}

			var res wallet.LoginResult
			switch onboarding.LoginMethod(method) {
			case onboarding.MethodEmail:
				res, err = c.LoginWithEmail(ctx)
			case onboarding.MethodGoogle:
				res, err = c.LoginWithGoogle(ctx)
			default:
				err = fmt.Errorf("unknown login method %q (expected email or google)", method)
			}
			if err != nil {
				return output.HandleError(err)
			}
			ws, err := c.FetchWallets(ctx)
			if err != nil {
				return output.HandleError(err)
			}
			if output.JSON {
				return output.Print(map[string]any{"login": res, "wallets": ws})
			}
			if res.Google != nil {
				printKV([2]string{"Signed in as", res.Google.Email})
			}
			pp := &printers.PrettyPrint{}
			pp.Wallets(ws.UserID, ws.Wallets...)
			fallbackNote(res.Fallback || ws.Fallback)
			return nil
		},
	}
	cmd.Flags().StringVar(&method, "method", method, "Login method: email or google.")
	_ = cmd.RegisterFlagCompletionFunc("method", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{string(onboarding.MethodEmail), string(onboarding.MethodGoogle)}, cobra.ShellCompDirectiveNoFileComp
	})
	options.AddOutputArg(cmd, output)
	parent.AddCommand(cmd)
}

// signIn authenticates c as userID and loads their wallets.
func signIn(ctx context.Context, c *wallet.Client, userID string) error {
	if userID == "" {
		return errors.Wrap(wallet.ErrUserIDRequired, "pass --user")
	}
	if _, err := c.Initialize(ctx); err != nil {
		return err
	}
	if _, err := c.UserToken(ctx, userID); err != nil {
		return err
	}
	_, err := c.FetchWallets(ctx)
	return err
}

func addWalletBalance(parent *cobra.Command) {
	var userID string
	cmd := &cobra.Command{
		Use:   "balance [wallet-id]",
		Short: "show token balances for a wallet",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, c, err := newWalletClient("wallet")
			if err != nil {
				return err
			}
			if err := signIn(cmd.Context(), c, userID); err != nil {
				return output.HandleError(err)
			}
			var walletID string
			if len(args) == 1 {
				walletID = args[0]
			}
			res, err := c.Balance(cmd.Context(), walletID)
			if err != nil {
				return output.HandleError(err)
			}
			if output.JSON {
				return output.Print(res)
			}
			pp := &printers.PrettyPrint{}
			pp.Balances(res.WalletID, res.Balances...)
			fallbackNote(res.Fallback)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "Wallet user id to sign in as.")
	options.AddOutputArg(cmd, output)
	parent.AddCommand(cmd)
}

func addWalletTransfer(parent *cobra.Command) {
	var userID, to, from string
	cmd := &cobra.Command{
		Use:   "transfer <amount>",
		Short: "send a USD amount from a wallet",
		Long: `Transfer sends amount (in dollars, e.g. 0.23) and asks for your PIN to
confirm. The destination defaults to destination_wallet_id from the config.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, c, err := newWalletClient("wallet")
			if err != nil {
				return err
			}
			cents, err := wallet.ToCents(args[0])
			if err != nil {
				return output.HandleError(err)
			}
			if to == "" {
				to = e.cfg.DestinationWalletID
			}
			if err := signIn(cmd.Context(), c, userID); err != nil {
				return output.HandleError(err)
			}
			res, err := c.Transfer(cmd.Context(), cents, to, from)
			if err != nil {
				return output.HandleError(err)
			}
			if output.JSON {
				return output.Print(res)
			}
			printKV(
				[2]string{"Amount", wallet.FormatCents(cents)},
				[2]string{"To", to},
				[2]string{"Status", res.Message},
				[2]string{"Transaction", res.TransactionID},
			)
			fallbackNote(res.Fallback)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "Wallet user id to sign in as.")
	cmd.Flags().StringVar(&to, "to", "", "Destination wallet id.")
	cmd.Flags().StringVar(&from, "from", "", "Source wallet id. Defaults to the user's first wallet.")
	options.AddOutputArg(cmd, output)
	parent.AddCommand(cmd)
}

func addWalletOnboard(parent *cobra.Command) {
	var amount string
	cmd := &cobra.Command{
		Use:   "onboard",
		Short: "join a focus group: agree to the rules, connect a wallet and pay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, c, err := newWalletClient("onboarding")
			if err != nil {
				return err
			}
			err = onboard(cmd.Context(), c, e.onboardingOptions(amount), terminalPrompts{}, &printers.PrettyPrint{Out: color.Output})
			return output.HandleError(err)
		},
	}
	cmd.Flags().StringVar(&amount, "amount", "", "Payment amount in USD. Defaults to payment_amount from the config.")
	parent.AddCommand(cmd)
}

var loginChoices = []struct {
	Label  string
	Method onboarding.LoginMethod
}{
	{"Log in with email", onboarding.MethodEmail},
	{"Log in with Google", onboarding.MethodGoogle},
	{"Create a new wallet", onboarding.MethodNew},
	{"Import an existing wallet", onboarding.MethodImport},
}

// onboardPrompts is the interactive surface of the onboard command.
type onboardPrompts interface {
	// AgreeRules asks the user to accept the group rules.
	AgreeRules() bool
	// Login picks a login method. userID is set for imports.
	Login(amount string) (method onboarding.LoginMethod, userID string, err error)
	// Retry asks whether to try the current step again.
	Retry(step onboarding.Step) bool
}

func onboard(ctx context.Context, w onboarding.Wallet, opts onboarding.Options, prompts onboardPrompts, pp *printers.PrettyPrint) error {
	group := app.NewGroup()

	pp.Markdown(app.GroupRules)
	group.AgreeRules(prompts.AgreeRules())
	if err := group.RequestJoin(); err != nil {
		return err
	}

	var paid *wallet.MessageResult
	opts.OnSuccess = func(r wallet.MessageResult) {
		paid = &r
		group.PaymentSucceeded()
	}
	flow := onboarding.New(w, opts)
	if err := flow.Open(ctx); err != nil {
		pp.Onboarding(flow.State())
		flow.Close()
		return err
	}

	for {
		s := flow.State()
		var err error
		switch s.Step {
		case onboarding.StepLogin:
			err = onboardLogin(ctx, flow, prompts)
		case onboarding.StepAuthenticate:
			err = flow.Authenticate(ctx)
		case onboarding.StepTransfer:
			pp.Onboarding(s)
			err = flow.Transfer(ctx)
		case onboarding.StepSuccess:
			pp.Onboarding(s)
			if paid != nil {
				_, _ = fmt.Fprintf(pp.Out, "Payment successful! Welcome to the group! %d users joined.\n", group.Joined())
			}
			flow.Close()
			return nil
		}
		if err == nil {
			continue
		}
		if errors.Is(err, errOnboardAborted) {
			flow.Close()
			return nil
		}
		s = flow.State()
		pp.Onboarding(s)
		switch s.Step {
		case onboarding.StepLogin:
			// Login failures stay on the login step and can be retried.
		case onboarding.StepAuthenticate:
			if !prompts.Retry(s.Step) {
				flow.Close()
				return nil
			}
		default:
			flow.Close()
			return err
		}
	}
}

var errOnboardAborted = errors.New("onboarding aborted")

func onboardLogin(ctx context.Context, flow *onboarding.Workflow, prompts onboardPrompts) error {
	method, userID, err := prompts.Login(flow.State().Amount)
	if err != nil {
		return err
	}
	switch method {
	case onboarding.MethodEmail:
		return flow.LoginWithEmail(ctx)
	case onboarding.MethodGoogle:
		return flow.LoginWithGoogle(ctx)
	case onboarding.MethodNew:
		return flow.CreateNewWallet(ctx)
	default:
		return flow.ImportWallet(ctx, userID)
	}
}

// terminalPrompts asks onboarding questions with promptui.
type terminalPrompts struct{}

func (terminalPrompts) AgreeRules() bool {
	_, err := (&promptui.Prompt{Label: "Agree to the rules", IsConfirm: true}).Run()
	return err == nil
}

func (terminalPrompts) Retry(step onboarding.Step) bool {
	_, err := (&promptui.Prompt{Label: "Continue (retry " + step.String() + ")", IsConfirm: true}).Run()
	return err == nil
}

func (terminalPrompts) Login(amount string) (onboarding.LoginMethod, string, error) {
	sel := promptui.Select{
		Label: "Connect a wallet to pay $" + amount,
		Items: loginChoices,
		Templates: &promptui.SelectTemplates{
			Label:    "{{ . }}",
			Active:   "> {{ .Label | cyan }}",
			Inactive: "  {{ .Label }}",
			Selected: "{{ .Label | bold }}",
		},
	}
	i, _, err := sel.Run()
	if err != nil {
		return "", "", errOnboardAborted
	}
	method := loginChoices[i].Method
	if method != onboarding.MethodImport {
		return method, "", nil
	}
	id, err := runPrompt(promptui.Prompt{Label: "Existing user id", Templates: promptTemplates()})
	if err != nil {
		return "", "", err
	}
	if id == "" {
		return "", "", errOnboardAborted
	}
	return method, id, nil
}
