// Package main provides the keynos CLI tool for deriving keys from an access key.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/complex-gh/keynos"
	"github.com/complex-gh/keynos/internal/config"
	"github.com/complex-gh/keynos/internal/log"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-tty"
	mcobra "github.com/muesli/mango-cobra"
	"github.com/muesli/roff"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"lukechampine.com/frand"
)

const (
	maxWidth = 72
)

var (
	baseStyle  = lipgloss.NewStyle().Margin(0, 0, 1, 2) //nolint:mnd
	red        = lipgloss.Color(completeColor("#FF4444", "196", "9"))
	errorStyle = baseStyle.
			Foreground(red).
			Background(lipgloss.AdaptiveColor{Light: completeColor("#FFEBEB", "255", "7"), Dark: completeColor("#2B1A1A", "235", "8")}).
			Padding(1, 2) //nolint:mnd

	cfg *config.C

	logLevel      string
	passphrase    string
	askPassphrase bool
	entropyFile   string
	rawKey        bool
	derivePath    string
	showRoot      bool
	showMnemonic  bool
	showNostr     bool
	privKeyHex    string
	pubKeyHex     string
	signatureHex  string

	rootCmd = &cobra.Command{
		Use:   "keynos",
		Short: "Derive a deterministic key hierarchy from an access key",
		Long: `Derive a deterministic key hierarchy from an access key.

An access key is 16 random bytes shown as 32 hex characters. Together with
an optional passphrase it determines a BIP32 root key; a three level hardened
path below the root yields a secp256k1 keypair used for ECDH and Schnorr
signatures.

SECURITY TIP: Add a space before the command to prevent it from being
saved in your shell history, or pass the passphrase through
KEYNOS_PASSPHRASE or --ask-passphrase instead of --passphrase.`,
		Example: `  keynos access-key
  keynos derive "0A1B 2C3D 4E5F 6071 8293 A4B5 C6D7 E8F9" --ask-passphrase
  keynos derive 0A1B2C3D4E5F60718293A4B5C6D7E8F9 --path "m/128'/0'/1'" --nostr
  keynos sign --privkey <hex> "hello"
  keynos verify --pubkey <hex> --signature <hex> "hello"`,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	accessKeyCmd = &cobra.Command{
		Use:   "access-key",
		Short: "Generate a new access key",
		Long: `Generate a new access key from 512 bytes of random data.

By default the random data comes from the system CSPRNG. Use --entropy-file
to supply your own (for example dice rolls or a hardware RNG dump); use "-"
to read it from stdin.`,
		Example: `  keynos access-key
  keynos access-key --raw
  head -c 4096 /dev/hwrng | keynos access-key --entropy-file -`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			key, err := newAccessKey(entropyFile)
			if err != nil {
				return err
			}
			if rawKey {
				fmt.Println(key)
				return nil
			}
			fmt.Println(keynos.AddSpaces(key))
			return nil
		},
	}

	formatCmd = &cobra.Command{
		Use:          "format <access-key>",
		Short:        "Print an access key (and passphrase) in display form",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			pass, err := resolvePassphrase(cmd)
			if err != nil {
				return err
			}
			fmt.Println(keynos.FormatKeyAndPassphrase(args[0], pass))
			return nil
		},
	}

	deriveCmd = &cobra.Command{
		Use:   "derive [access-key]",
		Short: "Derive the extended and ECDH keys for an access key",
		Long: `Derive the extended keypair and the ECDH keypair at a hardened path.

The access key can be given with or without spaces, in any case. If it is
not given as an argument it is read from stdin.

The path must have exactly three hardened levels, written with h or '
markers, optionally prefixed by m/. The default is taken from KEYNOS_PATH.`,
		Example: `  keynos derive 0A1B2C3D4E5F60718293A4B5C6D7E8F9
  keynos derive "0A1B 2C3D 4E5F 6071 8293 A4B5 C6D7 E8F9" --path 128h/0h/1h
  echo 0A1B2C3D4E5F60718293A4B5C6D7E8F9 | keynos derive --root --mnemonic`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := accessKeyArg(args)
			if err != nil {
				return err
			}
			pass, err := resolvePassphrase(cmd)
			if err != nil {
				return err
			}
			path := cfg.Path
			if cmd.Flags().Changed("path") {
				path = derivePath
			}
			return deriveOutput(os.Stdout, key, pass, path)
		},
	}

	sharedSecretCmd = &cobra.Command{
		Use:   "shared-secret",
		Short: "Compute the ECDH shared secret with a counterparty",
		Long: `Compute the ECDH shared secret between your private key and the
counterparty's public key. Both parties get the same 32-byte secret.

Pass --privkey - to read the private key from stdin.`,
		Example:      `  keynos shared-secret --privkey <your privkey hex> --pubkey <their pubkey hex>`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			priv, err := secretFlag(privKeyHex)
			if err != nil {
				return err
			}
			defer log.Benchmark(log.ECDH, "compute shared secret")()

			secret, err := keynos.ComputeSharedSecret(keynos.ECDHKeyPair{PrivKey: priv, PubKey: pubKeyHex})
			if err != nil {
				return fmt.Errorf("could not compute shared secret: %w", err)
			}
			fmt.Println(secret)
			return nil
		},
	}

	signCmd = &cobra.Command{
		Use:          "sign <message>",
		Short:        "Sign a message with a Schnorr signature",
		Long:         "Sign the SHA256 digest of a message with BIP340 Schnorr.\n\nPass --privkey - to read the private key from stdin.",
		Example:      `  keynos sign --privkey <hex> "hello"`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, args []string) error {
			priv, err := secretFlag(privKeyHex)
			if err != nil {
				return err
			}
			defer log.Benchmark(log.Sign, "sign")()

			sig, err := keynos.SchnorrSign(args[0], priv)
			if err != nil {
				return fmt.Errorf("could not sign message: %w", err)
			}
			fmt.Println(sig)
			return nil
		},
	}

	verifyCmd = &cobra.Command{
		Use:          "verify <message>",
		Short:        "Verify a Schnorr signature",
		Long:         "Verify a BIP340 Schnorr signature over the SHA256 digest of a message.\nExits non-zero if the signature is invalid.",
		Example:      `  keynos verify --pubkey <hex> --signature <hex> "hello"`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, args []string) error {
			defer log.Benchmark(log.Sign, "verify")()

			ok, err := keynos.SchnorrVerify(args[0], signatureHex, pubKeyHex)
			if err != nil {
				return fmt.Errorf("could not verify signature: %w", err)
			}
			if !ok {
				return errInvalidSignature
			}
			fmt.Println("valid")
			return nil
		},
	}

	envCmd = &cobra.Command{
		Use:          "env",
		Short:        "Describe the environment variables keynos reads",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			config.Usage(os.Stdout)
			return nil
		},
	}

	manCmd = &cobra.Command{
		Use:          "man",
		Args:         cobra.NoArgs,
		Short:        "generate man pages",
		Hidden:       true,
		SilenceUsage: true,
		RunE: func(*cobra.Command, []string) error {
			manPage, err := mcobra.NewManPage(1, rootCmd)
			if err != nil {
				//nolint: wrapcheck
				return err
			}
			manPage = manPage.WithSection("Copyright", "(C) 2025-2026 complex.\n"+
				"Released under MIT license.")
			fmt.Println(manPage.Build(roff.NewDocument()))
			return nil
		},
	}

	// completionCmd generates shell completion scripts for bash, zsh, fish, and powershell.
	completionCmd = &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion script",
		Long: `Generate shell completion script for keynos.

To load completions:

Bash:
  $ source <(keynos completion bash)

Zsh:
  $ keynos completion zsh > "${fpath[1]}/_keynos"

Fish:
  $ keynos completion fish | source

PowerShell:
  PS> keynos completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		SilenceUsage:          true,
		RunE: func(_ *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return rootCmd.GenBashCompletion(os.Stdout)
			case "zsh":
				return rootCmd.GenZshCompletion(os.Stdout)
			case "fish":
				return rootCmd.GenFishCompletion(os.Stdout, true)
			case "powershell":
				return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
			default:
				return fmt.Errorf("unknown shell: %s", args[0])
			}
		},
	}
)

var errInvalidSignature = errors.New("signature is not valid")

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error, off); overrides KEYNOS_LOG_LEVEL")

	for _, cmd := range []*cobra.Command{formatCmd, deriveCmd} {
		cmd.Flags().StringVarP(&passphrase, "passphrase", "p", "", "Passphrase appended to the access key")
		cmd.Flags().BoolVar(&askPassphrase, "ask-passphrase", false, "Prompt for the passphrase on the terminal")
	}

	accessKeyCmd.Flags().StringVar(&entropyFile, "entropy-file", "", `Read random data from this file ("-" for stdin) instead of the system CSPRNG`)
	accessKeyCmd.Flags().BoolVar(&rawKey, "raw", false, "Print the key without grouping spaces")

	deriveCmd.Flags().StringVar(&derivePath, "path", keynos.DefaultPath, "Three level hardened derivation path")
	deriveCmd.Flags().BoolVar(&showRoot, "root", false, "Also print the root xprv")
	deriveCmd.Flags().BoolVar(&showMnemonic, "mnemonic", false, "Also print the 24 word mnemonic backing the seed")
	deriveCmd.Flags().BoolVar(&showNostr, "nostr", false, "Also print the keypair as nostr npub/nsec")

	sharedSecretCmd.Flags().StringVar(&privKeyHex, "privkey", "", `Your private key (hex, "-" for stdin)`)
	sharedSecretCmd.Flags().StringVar(&pubKeyHex, "pubkey", "", "The counterparty's public key (hex, x-only or compressed)")
	_ = sharedSecretCmd.MarkFlagRequired("privkey")
	_ = sharedSecretCmd.MarkFlagRequired("pubkey")

	signCmd.Flags().StringVar(&privKeyHex, "privkey", "", `Private key (hex, "-" for stdin)`)
	_ = signCmd.MarkFlagRequired("privkey")

	verifyCmd.Flags().StringVar(&pubKeyHex, "pubkey", "", "Public key (hex, x-only or compressed)")
	verifyCmd.Flags().StringVar(&signatureHex, "signature", "", "Signature (hex)")
	_ = verifyCmd.MarkFlagRequired("pubkey")
	_ = verifyCmd.MarkFlagRequired("signature")

	rootCmd.AddCommand(accessKeyCmd, formatCmd, deriveCmd, sharedSecretCmd, signCmd, verifyCmd, envCmd, manCmd, completionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

// setup loads the environment configuration and initializes logging before
// any command runs.
func setup(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return err
	}

	level := cfg.LogLevel
	if cmd.Flags().Changed("log-level") {
		level = logLevel
	}
	log.Init(os.Stderr, level, cfg.LogJSON)
	log.CLI.Debug().Str("command", cmd.Name()).Msg("starting")
	return nil
}

// newAccessKey generates an access key from the system CSPRNG, or from the
// given file when path is not empty.
func newAccessKey(path string) (string, error) {
	if path == "" {
		return keynos.NewAccessKey(frand.Reader)
	}

	f, err := openFileOrStdin(path)
	if err != nil {
		return "", err
	}
	defer f.Close() //nolint:errcheck

	bts, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("could not read entropy: %w", err)
	}
	if len(bts) < keynos.RecommendedEntropyLen {
		log.CLI.Warn().
			Int("bytes", len(bts)).
			Int("recommended", keynos.RecommendedEntropyLen).
			Msg("entropy file is shorter than recommended")
	}
	return keynos.GenerateAccessKey(bts), nil
}

func openFileOrStdin(path string) (*os.File, error) {
	if path == "-" {
		return os.Stdin, nil
	}

	// G304: path is user-provided input, which is expected for a CLI tool
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}
	return f, nil
}

// accessKeyArg returns the access key from the arguments, or reads the first
// line of stdin when it is a pipe.
func accessKeyArg(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}

	if fi, err := os.Stdin.Stat(); err != nil || (fi.Mode()&os.ModeNamedPipe) == 0 {
		return "", errors.New("no access key given: pass it as an argument or pipe it to stdin")
	}
	return readLine(os.Stdin)
}

// secretFlag returns v, or the first line of stdin when v is "-".
func secretFlag(v string) (string, error) {
	if v != "-" {
		return v, nil
	}
	return readLine(os.Stdin)
}

func readLine(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("could not read stdin: %w", err)
		}
		return "", errors.New("stdin is empty")
	}
	return strings.TrimSpace(scanner.Text()), nil
}

// resolvePassphrase picks the passphrase from, in order: the terminal prompt,
// the --passphrase flag, KEYNOS_PASSPHRASE. Without any of them there is no
// passphrase, which is different from an empty one.
func resolvePassphrase(cmd *cobra.Command) (keynos.Passphrase, error) {
	switch {
	case askPassphrase:
		pass, err := askSeedPassphrase()
		if err != nil {
			return keynos.NoPassphrase, err
		}
		return keynos.NewPassphrase(string(pass)), nil
	case cmd.Flags().Changed("passphrase"):
		return keynos.NewPassphrase(passphrase), nil
	case cfg != nil && cfg.PassphraseSet():
		return keynos.NewPassphrase(cfg.Passphrase), nil
	default:
		return keynos.NoPassphrase, nil
	}
}

// deriveOutput runs the pipeline and prints the requested blocks.
func deriveOutput(w io.Writer, key string, pass keynos.Passphrase, path string) error {
	done := log.Benchmark(log.Seed, "generate seed")
	seed, err := keynos.GenerateSeed(key, pass)
	done()
	if err != nil {
		return fmt.Errorf("could not generate seed: %w", err)
	}

	root, err := keynos.GenerateRootXPrv(seed)
	if err != nil {
		return fmt.Errorf("could not generate root key: %w", err)
	}

	extended, err := keynos.DeriveHardened3x(root, path)
	if err != nil {
		return err
	}
	log.HD.Debug().Str("path", path).Msg("derived hardened child")

	ecdh, err := keynos.ExtractECDHKeys(extended)
	if err != nil {
		return err
	}

	if showMnemonic {
		mnemonic, err := keynos.Mnemonic(key, pass)
		if err != nil {
			return err
		}
		block(w, "24 word mnemonic", mnemonic)
	}

	if showRoot {
		block(w, "root extended private key", root)
	}

	block(w, fmt.Sprintf("extended keys at %s", path),
		fmt.Sprintf("%s (xpub)", extended.XPub),
		fmt.Sprintf("%s (xprv)", extended.XPrv))

	block(w, "ecdh keys",
		fmt.Sprintf("%s (public key, x-only)", ecdh.PubKey),
		fmt.Sprintf("%s (private key)", ecdh.PrivKey))

	if showNostr {
		npub, nsec, err := ecdh.Nostr()
		if err != nil {
			return fmt.Errorf("failed to derive Nostr keys: %w", err)
		}
		block(w, "nostr keys",
			fmt.Sprintf("%s (nostr public key)", npub),
			fmt.Sprintf("%s (nostr secret key)", nsec))
	}

	return nil
}

// block prints a titled group of lines in the "[title]" style.
func block(w io.Writer, title string, lines ...string) {
	_, _ = fmt.Fprintf(w, "[%s]\n\n", title)
	for _, l := range lines {
		_, _ = fmt.Fprintln(w, l)
	}
	_, _ = fmt.Fprintln(w)
}

func getWidth(maxw int) int {
	w, _, err := term.GetSize(int(os.Stdout.Fd())) //nolint: gosec
	if err != nil || w > maxw {
		return maxWidth
	}
	return w
}

func renderBlock(w io.Writer, s lipgloss.Style, width int, str string) {
	_, _ = io.WriteString(w, s.Width(width).Render(str))
	_, _ = io.WriteString(w, "\n")
}

// printError shows err in a styled block on terminals and as a plain line
// otherwise.
func printError(err error) {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}

	b := strings.Builder{}
	b.WriteRune('\n')
	renderBlock(&b, errorStyle, getWidth(maxWidth), errorHint(err))
	fmt.Fprint(os.Stderr, b.String())
}

// errorHint adds a short explanation for the error kinds users hit most.
func errorHint(err error) string {
	var (
		pathErr *keynos.DerivationPathError
		keyErr  *keynos.KeyExtractionError
		sigErr  *keynos.SignatureError
	)
	switch {
	case errors.As(err, &pathErr):
		return err.Error() + "\n\nPaths look like 128h/0h/0h or m/128'/0'/0'."
	case errors.Is(err, keynos.ErrNoPrivateKey):
		return err.Error() + "\n\nAn xpub cannot be used here; pass the xprv."
	case errors.As(err, &keyErr), errors.As(err, &sigErr):
		return err.Error() + "\n\nKeys and signatures are hex encoded."
	default:
		return err.Error()
	}
}

func completeColor(truecolor, ansi256, ansi string) string {
	//nolint: exhaustive
	switch lipgloss.ColorProfile() {
	case termenv.TrueColor:
		return truecolor
	case termenv.ANSI256:
		return ansi256
	}
	return ansi
}

func readPassword(msg string) ([]byte, error) {
	_, _ = fmt.Fprint(os.Stderr, msg)
	t, err := tty.Open()
	if err != nil {
		return nil, fmt.Errorf("could not open tty: %w", err)
	}
	defer t.Close()                                     //nolint: errcheck
	pass, err := term.ReadPassword(int(t.Input().Fd())) //nolint: gosec
	if err != nil {
		return nil, fmt.Errorf("could not read passphrase: %w", err)
	}
	return pass, nil
}

func askSeedPassphrase() ([]byte, error) {
	defer fmt.Fprintf(os.Stderr, "\n")
	return readPassword("Enter the passphrase for this access key: ")
}
