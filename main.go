// eztranslate: LLM-backed text translation for the browser, with a native
// messaging host, a loopback HTTP bridge and a settings CLI.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/minios-linux/eztranslate/bridge"
	"github.com/minios-linux/eztranslate/config"
	"github.com/minios-linux/eztranslate/i18n"
	"github.com/minios-linux/eztranslate/langmeta"
	"github.com/minios-linux/eztranslate/provider"
	"github.com/minios-linux/eztranslate/settings"
	"github.com/minios-linux/eztranslate/storage"
	"github.com/minios-linux/eztranslate/translate"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Application state
// ---------------------------------------------------------------------------

// app holds what the commands share. Storage is opened lazily so that
// commands like version work without a writable data directory.
type app struct {
	configPath string

	cfg     *config.File
	logger  *zap.Logger
	local   *storage.FileArea
	redis   *storage.RedisArea
	store   *storage.Manager
	closers []func() error
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	i18n.Init(cfg.Language)

	logger, err := initLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	a.logger = logger
	return nil
}

// openStorage builds the storage manager without touching any setting.
// The sync commands use it directly so they keep working when the active
// tier is unreachable.
func (a *app) openStorage() (*storage.Manager, error) {
	if a.store != nil {
		return a.store, nil
	}
	path, err := settings.FilePath(a.cfg.DataDir)
	if err != nil {
		return nil, err
	}
	a.local = storage.NewFileArea(path)

	var syncArea storage.Area
	if a.cfg.Sync.Enabled() {
		a.redis = storage.NewRedisArea(storage.RedisConfig{
			Addr:     a.cfg.Sync.Addr,
			Password: a.cfg.Sync.Password,
			DB:       a.cfg.Sync.DB,
			Key:      a.cfg.Sync.Key,
		}, a.logger)
		a.closers = append(a.closers, a.redis.Close)
		syncArea = a.redis
	}

	a.store = storage.NewManager(a.local, syncArea, a.logger)
	return a.store, nil
}

// open builds the storage manager and stores the first-run defaults for
// the UI language.
func (a *app) open(ctx context.Context) (*storage.Manager, error) {
	m, err := a.openStorage()
	if err != nil {
		return nil, err
	}
	if wrote, err := settings.EnsureDefaults(ctx, m, i18n.Language()); err != nil {
		return nil, syncHint(ctx, m, err)
	} else if wrote {
		a.logger.Debug("stored first-run language defaults", zap.String("locale", i18n.Language()))
	}
	return m, nil
}

// syncHint adds the way out to a storage error raised while the
// synchronized tier is active.
func syncHint(ctx context.Context, m *storage.Manager, err error) error {
	if tier, terr := m.Tier(ctx); terr != nil || tier != storage.Synchronized {
		return err
	}
	return fmt.Errorf("%w\n%s", err, i18n.T("Set sync.addr in the config file or run: eztranslate sync disable --force"))
}

func (a *app) close() {
	for _, c := range a.closers {
		if err := c(); err != nil && a.logger != nil {
			a.logger.Debug("close failed", zap.Error(err))
		}
	}
	a.closers = nil
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// serveNative runs the native messaging host until in is exhausted or the
// process is signalled.
func (a *app) serveNative(ctx context.Context, in io.Reader, out io.Writer) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := a.open(ctx)
	if err != nil {
		return err
	}
	handler := bridge.NewHandler(a.translator(store), a.logger)
	return bridge.NewHost(handler, a.logger).Serve(ctx, in, out)
}

func (a *app) translator(store settings.Store) *translate.Translator {
	return translate.New(store, translate.Options{
		Detector: langmeta.Whatlang{},
		Proxy:    a.cfg.HTTP.Proxy,
		Timeout:  a.cfg.HTTP.Timeout,
		Prompt:   a.cfg.Prompt,
		Logger:   a.logger,
	})
}

func (a *app) modelClient() *translate.ModelClient {
	return translate.NewModelClient(translate.NewHTTPClient(a.cfg.HTTP.Proxy, a.cfg.HTTP.Timeout), a.logger)
}

// initLogger builds the zap logger. Output always goes to stderr because
// stdout carries native messaging frames.
func initLogger(cfg config.Log) (*zap.Logger, error) {
	var level zapcore.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.WarnLevel
	}

	var encoderConfig zapcore.EncoderConfig
	encoding := "json"
	if strings.ToLower(cfg.Format) == "json" {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		encoding = "console"
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	return zapConfig.Build()
}

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "eztranslate",
		Short: "Translate text with the LLM provider of your choice",
		Long: `eztranslate: translate selected text with an LLM provider.

Runs as a browser native messaging host (serve), as a loopback HTTP
bridge (serve --http) or directly from the command line (translate).

Commands:
  translate   Translate text with the current provider
  serve       Run the native messaging host or HTTP bridge
  provider    List, select and test providers
  lang        Show or set the target languages
  sync        Switch settings between local and synchronized storage

Browsers start native messaging hosts with the caller's origin as the
first argument (chrome-extension://<id>/, or the manifest path and add-on
id for Firefox). Such an invocation runs the host like serve does.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		// Chrome on Windows adds --parent-window=<handle> after the origin.
		FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			if !browserLaunch(args) {
				return fmt.Errorf("unknown command %q for %q", args[0], cmd.CommandPath())
			}
			a.logger.Debug("started by browser", zap.Strings("args", args))
			return a.serveNative(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/eztranslate/config.yaml)")

	root.AddCommand(
		newTranslateCmd(a),
		newServeCmd(a),
		newProviderCmd(a),
		newLangCmd(a),
		newSyncCmd(a),
		newVersionCmd(),
	)

	return root
}

// browserLaunch reports whether args are what a browser passes when it
// starts a native messaging host.
func browserLaunch(args []string) bool {
	if len(args) == 0 {
		return false
	}
	if strings.HasPrefix(args[0], "chrome-extension://") {
		return true
	}
	return len(args) == 2 && strings.EqualFold(filepath.Ext(args[0]), ".json")
}

func run() int {
	a := &app{}
	defer a.close()

	if err := newRootCmd(a).Execute(); err != nil {
		logError("%v", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(run())
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "eztranslate version %s\n", version)
			fmt.Fprintf(out, "  commit:    %s\n", commit)
			fmt.Fprintf(out, "  built:     %s\n", date)
		},
	}
}

// ---------------------------------------------------------------------------
// translate
// ---------------------------------------------------------------------------

func newTranslateCmd(a *app) *cobra.Command {
	var to, second string

	cmd := &cobra.Command{
		Use:   "translate [text...]",
		Short: "Translate text with the current provider",
		Long: `Translate text with the current provider and print the result.

Text is taken from the arguments, or from stdin when none are given.
If the text is already in the primary target language, it is translated
into the secondary target instead.

Examples:
  eztranslate translate "Hello world"
  echo "Bonjour" | eztranslate translate --to German`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading stdin: %w", err)
				}
				text = string(data)
			}
			if strings.TrimSpace(text) == "" {
				return errors.New(i18n.T("Nothing to translate"))
			}

			store, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			out, err := a.translator(store).Translate(cmd.Context(), translate.Request{
				Text:            text,
				PrimaryTarget:   to,
				SecondaryTarget: second,
			})
			if err != nil {
				return errors.New(bridge.ErrorText(err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Primary target language (default: stored setting)")
	cmd.Flags().StringVar(&second, "second", "", "Secondary target language (default: stored setting)")

	return cmd
}

// ---------------------------------------------------------------------------
// serve
// ---------------------------------------------------------------------------

func newServeCmd(a *app) *cobra.Command {
	var httpAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the native messaging host or HTTP bridge",
		Long: `Serve translation requests.

Without flags, speaks the browser native messaging protocol on
stdin/stdout. With --http, serves POST /translate on the given address
instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if httpAddr == "" {
				return a.serveNative(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, err := a.open(ctx)
			if err != nil {
				return err
			}
			handler := bridge.NewHandler(a.translator(store), a.logger)
			return serveHTTP(ctx, httpAddr, bridge.NewRouter(handler, a.logger))
		},
	}

	cmd.Flags().StringVar(&httpAddr, "http", "", "Serve the HTTP bridge on this address (e.g. 127.0.0.1:7878)")

	return cmd
}

func serveHTTP(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logInfo(i18n.T("HTTP bridge listening on %s"), addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down HTTP bridge: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// provider
// ---------------------------------------------------------------------------

func newProviderCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "provider",
		Short: "List, select and test providers",
		Long: `Manage the translation provider.

Examples:
  eztranslate provider list
  eztranslate provider use openai --model gpt-4o-mini
  eztranslate provider use ollama --server-url http://localhost:11434 --model llama3
  eztranslate provider models
  eztranslate provider test`,
	}

	cmd.AddCommand(
		newProviderListCmd(a),
		newProviderUseCmd(a),
		newProviderShowCmd(a),
		newProviderModelsCmd(a),
		newProviderTestCmd(a),
	)

	return cmd
}

func newProviderListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show every provider and its status",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			ps, err := settings.Load(cmd.Context(), store)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, d := range provider.All() {
				marker := " "
				if d.ID == ps.CurrentProvider {
					marker = "*"
				}
				status := colorRed + i18n.T("not configured") + colorReset
				if entry, ok := ps.Entry(d.ID); ok && configured(d, entry) {
					status = colorGreen + i18n.T("configured") + colorReset
				}
				fmt.Fprintf(out, "%s %-14s %-28s %-10s %s\n", marker, d.ID, d.Name, d.Format, status)
			}
			return nil
		},
	}
}

// configured reports whether entry has the credentials d needs.
func configured(d provider.Descriptor, e settings.ProviderEntry) bool {
	if d.RequiresAPIKey && strings.TrimSpace(e.APIKey) == "" {
		return false
	}
	if d.RequiresServerURL && strings.TrimSpace(e.ServerURL) == "" {
		return false
	}
	return e.EffectiveModel() != ""
}

func newProviderUseCmd(a *app) *cobra.Command {
	var key, serverURL, model, customModel string

	cmd := &cobra.Command{
		Use:   "use <provider>",
		Short: "Select the current provider and store its credentials",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := provider.Describe(args[0])
			if err != nil {
				return fmt.Errorf("%s (%s)", err, strings.Join(provider.IDs(), ", "))
			}
			store, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			ps, err := settings.Load(cmd.Context(), store)
			if err != nil {
				return err
			}
			entry, _ := ps.Entry(d.ID)

			flags := cmd.Flags()
			if flags.Changed("key") {
				entry.APIKey = strings.TrimSpace(key)
			}
			if flags.Changed("server-url") {
				entry.ServerURL = strings.TrimSpace(serverURL)
			}
			if flags.Changed("model") {
				entry.SelectedModel = strings.TrimSpace(model)
				entry.UseCustomModel = false
			}
			if flags.Changed("custom-model") {
				entry.CustomModel = strings.TrimSpace(customModel)
				entry.UseCustomModel = entry.CustomModel != ""
			}

			in := bufio.NewScanner(cmd.InOrStdin())
			if d.RequiresAPIKey && entry.APIKey == "" {
				if d.KeyHelpURL != "" {
					fmt.Fprintf(os.Stderr, "  %s %s%s%s\n", i18n.T("Get your API key from:"), colorGreen, d.KeyHelpURL, colorReset)
				}
				entry.APIKey = prompt(in, i18n.T("Enter API key: "), "")
				if entry.APIKey == "" {
					return errors.New(i18n.T("No API key provided"))
				}
			}
			if d.RequiresServerURL && entry.ServerURL == "" {
				entry.ServerURL = prompt(in, i18n.Tf("Server URL [%s]: ", d.ServerURLPlaceholder), d.ServerURLPlaceholder)
				if entry.ServerURL == "" {
					return errors.New(i18n.T("No server URL provided"))
				}
			}
			if entry.EffectiveModel() == "" && len(d.Models.Fixed) > 0 {
				entry.SelectedModel = d.Models.Fixed[0]
			}

			ps.Select(d.ID, entry)
			if err := settings.Save(cmd.Context(), store, ps); err != nil {
				return err
			}

			logSuccess(i18n.T("Current provider: %s"), d.Name)
			if entry.EffectiveModel() == "" {
				logWarning(i18n.T("No model selected, pick one with: eztranslate provider models"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "API key")
	cmd.Flags().StringVar(&serverURL, "server-url", "", "Server URL for self-hosted providers and Azure")
	cmd.Flags().StringVar(&model, "model", "", "Model from the provider's list")
	cmd.Flags().StringVar(&customModel, "custom-model", "", "Custom model name (overrides --model)")

	return cmd
}

// prompt reads one line from in, returning def for an empty answer.
func prompt(in *bufio.Scanner, label, def string) string {
	fmt.Fprint(os.Stderr, "  "+label)
	if !in.Scan() {
		return def
	}
	if v := strings.TrimSpace(in.Text()); v != "" {
		return v
	}
	return def
}

func newProviderShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current provider settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			ps, err := settings.Load(cmd.Context(), store)
			if err != nil {
				return err
			}
			tier, err := store.Tier(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-12s %s\n", i18n.T("Storage:"), tier)
			if ps.CurrentProvider == "" {
				fmt.Fprintln(out, i18n.T("No provider configured"))
				return nil
			}
			entry := ps.Current()
			name := ps.CurrentProvider
			if d, err := provider.Describe(ps.CurrentProvider); err == nil {
				name = d.Name
			}
			fmt.Fprintf(out, "%-12s %s (%s)\n", i18n.T("Provider:"), name, ps.CurrentProvider)
			if entry.APIKey != "" {
				fmt.Fprintf(out, "%-12s %s\n", i18n.T("API key:"), settings.MaskKey(entry.APIKey))
			}
			if entry.ServerURL != "" {
				fmt.Fprintf(out, "%-12s %s\n", i18n.T("Server URL:"), entry.ServerURL)
			}
			fmt.Fprintf(out, "%-12s %s\n", i18n.T("Model:"), entry.EffectiveModel())
			return nil
		},
	}
}

// activeFor builds the request configuration for id from stored settings,
// without the completeness checks ResolveActiveConfig applies.
func activeFor(ps settings.ProviderSettings, id string) (translate.ActiveConfig, error) {
	if id == "" {
		id = ps.CurrentProvider
	}
	if id == "" {
		return translate.ActiveConfig{}, errors.New(i18n.T("No provider configured"))
	}
	d, err := provider.Describe(id)
	if err != nil {
		return translate.ActiveConfig{}, err
	}
	entry, _ := ps.Entry(id)
	return translate.ActiveConfig{
		Provider:  d,
		APIKey:    strings.TrimSpace(entry.APIKey),
		ServerURL: strings.TrimSpace(entry.ServerURL),
		Model:     entry.EffectiveModel(),
	}, nil
}

func newProviderModelsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "models [provider]",
		Short: "List the models a provider offers",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			ps, err := settings.Load(cmd.Context(), store)
			if err != nil {
				return err
			}
			var id string
			if len(args) == 1 {
				id = args[0]
			}
			cfg, err := activeFor(ps, id)
			if err != nil {
				return err
			}

			models, err := a.modelClient().ListModels(cmd.Context(), cfg.Provider, cfg)
			if err != nil {
				return err
			}
			sort.Strings(models)
			out := cmd.OutOrStdout()
			for _, m := range models {
				marker := " "
				if m == cfg.Model {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %s\n", marker, m)
			}
			logInfo(i18n.N("%d model available from %s", "%d models available from %s", len(models)), len(models), cfg.Provider.Name)
			return nil
		},
	}
}

func newProviderTestCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "test [provider]",
		Short: "Check that the stored credentials are accepted",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			ps, err := settings.Load(cmd.Context(), store)
			if err != nil {
				return err
			}
			var id string
			if len(args) == 1 {
				id = args[0]
			}
			cfg, err := activeFor(ps, id)
			if err != nil {
				return err
			}

			if err := a.modelClient().TestConnection(cmd.Context(), cfg.Provider, cfg); err != nil {
				return fmt.Errorf("%s: %w", i18n.T("Connection test failed"), err)
			}
			logSuccess(i18n.T("Connection to %s works"), cfg.Provider.Name)
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// lang
// ---------------------------------------------------------------------------

func newLangCmd(a *app) *cobra.Command {
	var primary, secondary string

	cmd := &cobra.Command{
		Use:   "lang",
		Short: "Show or set the target languages",
		Long: `Show or set the target languages.

The primary target is used unless the text is already written in it, in
which case the secondary target is used. Languages are given by English
name, e.g. "French" or "Simplified Chinese".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.open(cmd.Context())
			if err != nil {
				return err
			}

			var update settings.Languages
			if cmd.Flags().Changed("primary") {
				if update.Target, err = languageValue(primary); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("secondary") {
				if update.SecondTarget, err = languageValue(secondary); err != nil {
					return err
				}
			}
			if update != (settings.Languages{}) {
				if err := settings.SaveLanguages(cmd.Context(), store, update); err != nil {
					return err
				}
			}

			stored, err := settings.LoadLanguages(cmd.Context(), store)
			if err != nil {
				return err
			}
			p, s := stored.Names()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-12s %s\n", i18n.T("Primary:"), p)
			fmt.Fprintf(out, "%-12s %s\n", i18n.T("Secondary:"), s)
			return nil
		},
	}

	cmd.Flags().StringVar(&primary, "primary", "", "Primary target language")
	cmd.Flags().StringVar(&secondary, "secondary", "", "Secondary target language")

	return cmd
}

// languageValue maps a user-supplied language to the message key stored
// in settings. It accepts English names, message keys and known aliases.
func languageValue(v string) (string, error) {
	name, ok := langmeta.Lookup(v)
	if !ok {
		return "", fmt.Errorf(i18n.T("unknown language %q, known languages: %s"),
			strings.TrimSpace(v), strings.Join(langmeta.Names(), ", "))
	}
	return langmeta.KeyForName(name), nil
}

// ---------------------------------------------------------------------------
// sync
// ---------------------------------------------------------------------------

func newSyncCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Switch settings between local and synchronized storage",
		Long: `Switch settings between the local file and the synchronized Redis tier.

Enabling or disabling copies every setting to the other tier before it
becomes active. If the copy fails, the previous tier stays active.
The synchronized tier needs sync.addr in the config file.`,
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show the active storage tier",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStorage()
			if err != nil {
				return err
			}
			tier, err := store.Tier(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-12s %s\n", i18n.T("Active:"), tier)
			fmt.Fprintf(out, "%-12s %s\n", i18n.T("Local file:"), a.local.Path())
			if !store.HasSync() {
				fmt.Fprintf(out, "%-12s %s\n", i18n.T("Server:"), i18n.T("not configured"))
				if tier == storage.Synchronized {
					logWarning(i18n.T("The synchronized tier is active but sync.addr is not set"))
					logWarning(i18n.T("Set sync.addr in the config file or run: eztranslate sync disable --force"))
				}
				return nil
			}
			fmt.Fprintf(out, "%-12s %s\n", i18n.T("Server:"), a.cfg.Sync.Addr)
			if err := a.redis.Ping(cmd.Context()); err != nil {
				logWarning(i18n.T("The synchronized server is unreachable: %v"), err)
				if tier == storage.Synchronized {
					logWarning(i18n.T("Set sync.addr in the config file or run: eztranslate sync disable --force"))
				}
			}
			return nil
		},
	}

	enable := &cobra.Command{
		Use:   "enable",
		Short: "Move settings to the synchronized tier",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStorage()
			if err != nil {
				return err
			}
			if a.redis != nil {
				if err := a.redis.Ping(cmd.Context()); err != nil {
					return fmt.Errorf(i18n.T("The synchronized server is unreachable: %v"), err)
				}
			}
			return switchTier(cmd.Context(), store, storage.Synchronized)
		},
	}

	var force bool
	disable := &cobra.Command{
		Use:   "disable",
		Short: "Move settings back to the local file",
		Long: `Move settings back to the local file.

With --force, the local tier becomes active without copying anything.
Use it when the synchronized server is gone: the local settings from
before sync was enabled come back.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStorage()
			if err != nil {
				return err
			}
			if force {
				if err := store.ForceLocal(cmd.Context()); err != nil {
					return err
				}
				logSuccess(i18n.T("Settings now stored in the %s tier"), storage.Local)
				return nil
			}
			if err := switchTier(cmd.Context(), store, storage.Local); err != nil {
				logWarning(i18n.T("Run eztranslate sync disable --force to use the local settings again"))
				return err
			}
			return nil
		},
	}
	disable.Flags().BoolVar(&force, "force", false, "Activate the local tier without copying from the server")

	cmd.AddCommand(status, enable, disable)

	return cmd
}

func switchTier(ctx context.Context, store *storage.Manager, target storage.Tier) error {
	if err := store.SwitchTier(ctx, target); err != nil {
		if storage.IsMigrationError(err) {
			logWarning(i18n.T("Settings were not migrated, the previous storage tier is still active"))
		}
		return err
	}
	logSuccess(i18n.T("Settings now stored in the %s tier"), target)
	return nil
}
