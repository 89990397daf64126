package jobs

import (
	"strings"

	"incoin/bot/common"
	"incoin/domain/services"

	"github.com/bwmarrin/discordgo"
)

// Feature handles the job catalog commands
type Feature struct{}

// New creates the jobs feature
func New() *Feature {
	return &Feature{}
}

// HandleCommand routes /jobs and /job-change
func (f *Feature) HandleCommand(cmd *common.Command) error {
	if cmd.Name() == "job-change" {
		return f.handleChange(cmd)
	}

	switch cmd.Subcommand() {
	case "assign":
		return f.handleAssign(cmd)
	case "remove":
		return f.handleRemove(cmd)
	case "list":
		return f.handleList(cmd)
	case "my-job":
		return f.handleMyJob(cmd)
	}
	return common.NewUserError("不明なサブコマンドです。", "Unknown jobs subcommand")
}

// Choices suggests selectable jobs whose name contains the typed text
func (f *Feature) Choices(typed string) []*discordgo.ApplicationCommandOptionChoice {
	typed = strings.ToLower(strings.TrimSpace(typed))
	var choices []*discordgo.ApplicationCommandOptionChoice
	for _, job := range services.SelectableJobs() {
		if typed != "" && !strings.Contains(strings.ToLower(job.Name), typed) {
			continue
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: job.Name, Value: job.Name})
		if len(choices) == common.MaxAutocompleteChoices {
			break
		}
	}
	return choices
}
