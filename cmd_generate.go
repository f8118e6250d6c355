package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"focus_group_generator/generator"
	"focus_group_generator/provider"
)

// readSecret is a test hook for the hidden credential prompt. It returns ""
// when in is not a terminal.
var readSecret = defaultReadSecret

func defaultReadSecret(in io.Reader, out io.Writer, label string) (string, error) {
	f, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return "", nil
	}
	fmt.Fprintf(out, "%s API key: ", label) //nolint:errcheck
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(out) //nolint:errcheck
	if err != nil {
		return "", fmt.Errorf("reading api key: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

type generateOptions struct {
	studyPath  string
	provider   string
	model      string
	promptFile string
	output     string
	report     bool
}

func newGenerateCommand(a *app) *cobra.Command {
	var opts generateOptions
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a transcript for a study",
		Long: `Compose the research prompt for a study, send it to a provider and write the
post-processed transcript.

The provider defaults to the config file's provider, then to the recommendation
for the study languages. The API key comes from the config file or the
provider's environment variable; on a terminal it is prompted for otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, a, opts)
		},
	}
	cmd.Flags().StringVar(&opts.studyPath, "study", "", "Study file (YAML or JSON)")
	cmd.Flags().StringVar(&opts.provider, "provider", "", "Provider id: openai, anthropic, google, cohere, mistral")
	cmd.Flags().StringVar(&opts.model, "model", "", "Model name (default: provider's first catalogued model)")
	cmd.Flags().StringVar(&opts.promptFile, "prompt-file", "", "Use this reviewed prompt instead of composing one")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write the transcript to a file instead of stdout")
	cmd.Flags().BoolVar(&opts.report, "report", false, "Print the quality report to stderr")
	_ = cmd.MarkFlagRequired("study")
	return cmd
}

func runGenerate(cmd *cobra.Command, a *app, opts generateOptions) error {
	s, err := loadStudy(opts.studyPath)
	if err != nil {
		return err
	}
	t, err := a.tables()
	if err != nil {
		return err
	}

	prompt := ""
	if opts.promptFile != "" {
		data, err := os.ReadFile(opts.promptFile)
		if err != nil {
			return fmt.Errorf("reading prompt file: %w", err)
		}
		prompt = string(data)
	}

	kind, err := a.pickProvider(opts.provider, s.Languages)
	if err != nil {
		return err
	}
	model := opts.model
	if model == "" {
		model = a.cfg.ProviderSettings(kind).Model
	}
	credential := a.cfg.Credential(kind)
	if credential == "" {
		desc, _ := provider.Lookup(kind)
		if credential, err = readSecret(cmd.InOrStdin(), cmd.ErrOrStderr(), desc.Name); err != nil {
			return err
		}
	}

	gw := a.gateway()
	handle, err := gw.Initialize(kind, credential, model)
	if err != nil {
		return err
	}
	agent, err := generator.NewAgent(gw.Bind(handle), generator.WithTables(t), generator.WithAgentLogger(a.logger))
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if d := a.cfg.Timeout(); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	out, err := agent.Run(ctx, s, prompt)
	if err != nil {
		return err
	}
	if out.IsFallback() {
		fmt.Fprintf(cmd.ErrOrStderr(), "note: %s output was unusable (%s); a local placeholder transcript was written\n", out.Provider, out.FallbackReason) //nolint:errcheck
	}

	if err := writeTranscript(cmd.OutOrStdout(), opts.output, out.Transcript.Text()); err != nil {
		return err
	}
	if opts.report {
		printReport(cmd.ErrOrStderr(), out.Report)
	}
	return nil
}

// pickProvider resolves the flag, then the configured provider, then the
// language recommendation.
func (a *app) pickProvider(flag string, languages []string) (provider.Kind, error) {
	name := flag
	if name == "" {
		name = a.cfg.Provider
	}
	if name == "" {
		return provider.Recommend(languages), nil
	}
	kind, err := provider.ParseKind(name)
	if err != nil {
		return "", &generator.ConfigurationError{Problems: []generator.Problem{{Field: "provider", Message: err.Error()}}}
	}
	return kind, nil
}

func writeTranscript(stdout io.Writer, path, text string) error {
	if path == "" {
		_, err := fmt.Fprintln(stdout, text)
		return err
	}
	if err := os.WriteFile(path, []byte(text+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing transcript: %w", err)
	}
	return nil
}
