package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/apresai/podcast-studio/internal/script"
	"github.com/apresai/podcast-studio/internal/tts"
)

var flagProvider string

var voicesCmd = &cobra.Command{
	Use:   "voices",
	Short: "List available voices for the TTS providers",
	RunE:  runVoices,
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#888888"))
	defaultStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	idCol        = lipgloss.NewStyle().Width(28)
	nameCol      = lipgloss.NewStyle().Width(12)
	genderCol    = lipgloss.NewStyle().Width(8)
	langCol      = lipgloss.NewStyle().Width(10)
)

func init() {
	voicesCmd.Flags().StringVar(&flagProvider, "provider", "", "Only list this provider ("+strings.Join(tts.ProviderNames(), ", ")+")")
	rootCmd.AddCommand(voicesCmd)
}

func runVoices(cmd *cobra.Command, args []string) error {
	providers := tts.ProviderNames()
	if flagProvider != "" {
		providers = []string{flagProvider}
	}

	w := cmd.OutOrStdout()
	for _, name := range providers {
		voices, err := tts.AvailableVoices(name)
		if err != nil {
			return err
		}
		writeVoiceTable(w, name, voices)
	}
	fmt.Fprintln(w)
	return nil
}

// writeVoiceTable prints one provider's catalog, marking the voices the
// hosts get by default.
func writeVoiceTable(w io.Writer, provider string, voices []tts.VoiceInfo) {
	table := tts.NewVoiceTable(voices)
	defaults := map[string]string{}
	for _, gender := range []string{script.GenderFemale, script.GenderMale} {
		if id := table.Default(gender); id != "" {
			defaults[id] = gender
		}
	}

	fmt.Fprintf(w, "\n  %s\n", titleStyle.Render(strings.ToUpper(provider)))
	fmt.Fprintf(w, "  %s%s%s%s%s\n",
		headerStyle.Render(idCol.Render("ID")),
		headerStyle.Render(nameCol.Render("NAME")),
		headerStyle.Render(genderCol.Render("GENDER")),
		headerStyle.Render(langCol.Render("LANGUAGE")),
		headerStyle.Render("DESCRIPTION"),
	)
	for _, v := range voices {
		desc := v.Description
		if g, ok := defaults[v.ID]; ok {
			desc += defaultStyle.Render(fmt.Sprintf(" (default %s host)", strings.ToLower(g)))
		}
		fmt.Fprintf(w, "  %s%s%s%s%s\n",
			idCol.Render(v.ID), nameCol.Render(v.Name), genderCol.Render(v.Gender), langCol.Render(v.Language), desc)
	}
}
