// Package cli is the command-line front end of the register.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tartampluch/go-register/internal/config"
	"github.com/tartampluch/go-register/internal/engine"
	"github.com/tartampluch/go-register/internal/photos"
	"github.com/tartampluch/go-register/internal/publish"
	"github.com/tartampluch/go-register/internal/register"
)

// App carries what every command needs once flags and settings are resolved.
type App struct {
	settings config.Settings
	tr       *Translator
	photos   *photos.Library
	store    *register.Store

	viper        *viper.Viper
	clock        register.Clock
	fetcher      engine.VCardFetcher
	photoFs      afero.Fs
	readPassword func(prompt string) (string, error)
	newPublisher func(ctx context.Context, s config.PublishSettings) (publish.Publisher, error)
	logOutput    io.Writer
	logCloser    io.Closer

	configFile string
	debug      bool
}

// Option customizes the App, mainly for tests.
type Option func(*App)

func WithClock(c register.Clock) Option { return func(a *App) { a.clock = c } }

func WithFetcher(f engine.VCardFetcher) Option { return func(a *App) { a.fetcher = f } }

func WithPhotoFs(fs afero.Fs) Option { return func(a *App) { a.photoFs = fs } }

// WithPasswordReader replaces the terminal prompt.
func WithPasswordReader(fn func(prompt string) (string, error)) Option {
	return func(a *App) { a.readPassword = fn }
}

func WithPublisherFactory(fn func(ctx context.Context, s config.PublishSettings) (publish.Publisher, error)) Option {
	return func(a *App) { a.newPublisher = fn }
}

// WithLogOutput sends logs to w only, skipping the log file.
func WithLogOutput(w io.Writer) Option { return func(a *App) { a.logOutput = w } }

// Execute runs the command line and closes the log file on every path.
func Execute(ctx context.Context, args []string, opts ...Option) error {
	root, app := newRoot(opts...)
	root.SetArgs(args)
	defer app.teardown()

	err := root.ExecuteContext(ctx)
	if err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return err
	}
	slog.Debug(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return nil
}

// NewRootCmd builds the command tree.
func NewRootCmd(opts ...Option) *cobra.Command {
	root, _ := newRoot(opts...)
	return root
}

func newRoot(opts ...Option) (*cobra.Command, *App) {
	app := &App{
		viper:        config.NewViper(),
		clock:        register.RealClock{},
		fetcher:      engine.NewHTTPFetcher(),
		readPassword: terminalPassword,
		newPublisher: publish.New,
	}
	for _, opt := range opts {
		opt(app)
	}

	root := &cobra.Command{
		Use:               "go-register",
		Short:             config.AppName + ": member register and birthday reminders",
		Version:           config.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: app.setup,
	}
	root.SetVersionTemplate(fmt.Sprintf(config.MsgVersionOutput,
		config.AppName, config.Version, runtime.GOOS, runtime.GOARCH))

	pf := root.PersistentFlags()
	pf.StringVar(&app.configFile, config.FlagConfig, config.DefaultConfigFile, config.FlagDescConfig)
	pf.BoolVar(&app.debug, config.FlagDebug, false, config.FlagDescDebug)
	pf.String(config.FlagData, "", config.FlagDescData)
	pf.String(config.FlagLang, "", config.FlagDescLang)
	_ = app.viper.BindPFlag(config.KeyDataFile, pf.Lookup(config.FlagData))
	_ = app.viper.BindPFlag(config.KeyLanguage, pf.Lookup(config.FlagLang))

	root.AddCommand(
		app.newAddCmd(),
		app.newShowCmd(),
		app.newListCmd(),
		app.newSearchCmd(),
		app.newRemoveCmd(),
		app.newBirthdaysCmd(),
		app.newImportCmd(),
		app.newExportCmd(),
		app.newPublishCmd(),
		app.newServeCmd(),
		app.newCredentialsCmd(),
	)
	return root, app
}

// setup runs before every command: logging, settings, translator.
// The member file is opened lazily by the commands that need it.
func (a *App) setup(cmd *cobra.Command, _ []string) error {
	a.logCloser = setupLogging(a.debug, a.logOutput, cmd.ErrOrStderr())
	logStartupInfo(cmd.CommandPath())

	s, err := config.LoadSettings(a.viper, a.configFile)
	if err != nil {
		return err
	}
	a.settings = s
	a.tr = NewTranslator(s.Lang())

	a.photos = photos.NewLibrary(s.ImagesDir)
	if a.photoFs != nil {
		a.photos.Fs = a.photoFs
	}
	return nil
}

func (a *App) teardown() {
	if a.logCloser != nil {
		_ = a.logCloser.Close()
		a.logCloser = nil
	}
}

// openStore loads the member file once per invocation.
func (a *App) openStore() (*register.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	s, err := register.Open(a.settings.DataFile, register.WithClock(a.clock))
	if err != nil {
		return nil, err
	}
	a.store = s
	return s, nil
}
