package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"focus_group_generator/generator"
)

func newPromptCommand(a *app) *cobra.Command {
	var studyPath, template string
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the composed research prompt for a study",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadStudy(studyPath)
			if err != nil {
				return err
			}
			t, err := a.tables()
			if err != nil {
				return err
			}
			c := generator.NewComposer(t)

			kind := c.ClassifyTopic(s.Topic)
			if template != "" {
				if kind, err = parseTemplateKind(template); err != nil {
					return err
				}
			}
			a.logger.Debug("Composing prompt", "topic", s.Topic, "template", kind)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), c.ComposeWith(s, generator.BuildTemplate(kind)))
			return err
		},
	}
	cmd.Flags().StringVar(&studyPath, "study", "", "Study file (YAML or JSON)")
	cmd.Flags().StringVar(&template, "template", "", "Template kind: standard, business, consumer, healthcare, technology (default: classified from topic)")
	_ = cmd.MarkFlagRequired("study")
	return cmd
}

func parseTemplateKind(name string) (generator.TemplateKind, error) {
	want := strings.ToLower(strings.TrimSpace(name))
	for _, k := range generator.TemplateKinds {
		if string(k) == want {
			return k, nil
		}
	}
	return "", &generator.ConfigurationError{Problems: []generator.Problem{{Field: "template", Message: fmt.Sprintf("unknown template kind %q", name)}}}
}
