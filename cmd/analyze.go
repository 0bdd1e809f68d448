package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spigell/jobnado/internal/cvinput"
	"github.com/spigell/jobnado/internal/opportunity"
	"github.com/spigell/jobnado/internal/profile"
	"github.com/spigell/jobnado/internal/session"
	"go.uber.org/zap"
)

const (
	PromptOutreach        = "Write outreach message"
	PromptCoverLetter     = "Write cover letter"
	PromptInterview       = "Practice interview"
	PromptReportByCompany = "Report by companies"
	PromptResultsToFile   = "Dump opportunities to file"
	PromptAnotherRole     = "Search another role"
	PromptExit            = "Exit"
	PromptBack            = "back"
)

var errExit = errors.New("exit requested")

var actionPrompt = promptui.Select{
	Label: "What next?",
	Items: []string{
		PromptOutreach,
		PromptCoverLetter,
		PromptInterview,
		PromptReportByCompany,
		PromptResultsToFile,
		PromptAnotherRole,
		PromptExit,
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a CV and search for matching opportunities interactively",
	Run: func(cmd *cobra.Command, _ []string) {
		analyze(cmd)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("file", "f", "", "CV file (pdf, docx, txt or image)")
	analyzeCmd.Flags().String("text", "", "CV as plain text")
	analyzeCmd.Flags().String("country", session.DefaultCountry, "country to search in")
	analyzeCmd.Flags().String("role", "", "role to search for, skips the role prompt")
	analyzeCmd.Flags().BoolP("auto-approve", "y", false, "search the primary role and dump the results without prompting")
}

// analyzer drives one CLI session through the same manager the HTTP API uses.
type analyzer struct {
	app      *application
	sessions *session.Manager
	logger   *zap.Logger
	id       string
}

func analyze(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log, config := setup()

	input, err := readInput(cmd)
	if err != nil {
		log.Fatal("reading the cv", zap.Error(err))
	}

	a, err := newApplication(ctx, config, log, false)
	if err != nil {
		log.Fatal("building the application", zap.Error(err))
	}
	defer a.Close()

	c := &analyzer{
		app:      a,
		sessions: session.NewManager(session.NewMemoryStore(0), a.analyzer, a.searcher, log),
		logger:   log,
	}

	state, err := c.sessions.Start(ctx)
	if err != nil {
		log.Fatal("starting a session", zap.Error(err))
	}
	c.id = state.ID

	log.Info("analyzing the cv")

	state, err = c.sessions.Analyze(ctx, c.id, input)
	if err != nil {
		reason := "analysis failed"
		if state != nil && state.Error != "" {
			reason = state.Error
		}
		log.Fatal(reason, zap.Error(err))
	}

	pretty, err := prettyJSON(state.Analysis)
	if err != nil {
		log.Fatal("encoding the analysis", zap.Error(err))
	}
	log.Info(fmt.Sprintf("analysis: \n %s", pretty))

	country, _ := cmd.Flags().GetString("country")
	role, _ := cmd.Flags().GetString("role")
	autoApprove, _ := cmd.Flags().GetBool("auto-approve")

	if role == "" && !autoApprove {
		role, err = selectRole(state.Analysis)
		if err != nil {
			log.Fatal("exiting", zap.Error(err))
		}
	}

	for {
		state, err = c.sessions.Search(ctx, c.id, country, role)
		if err != nil {
			log.Fatal("searching", zap.Error(err))
		}

		if len(state.Opportunities) == 0 {
			log.Info("exiting", zap.String("reason", state.Error))
			return
		}

		log.Info("current list of opportunities",
			zap.String("role", state.SelectedRole),
			zap.String("country", state.Country),
			zap.Int("count", len(state.Opportunities)),
		)

		if autoApprove {
			if err := c.handleAction(ctx, PromptResultsToFile, state); err != nil {
				log.Fatal("exiting", zap.Error(err))
			}
			return
		}

		role, err = c.loop(ctx, state)
		if err != nil {
			if errors.Is(err, errExit) {
				return
			}
			log.Fatal("exiting", zap.Error(err))
		}
	}
}

// loop runs actions on the current results until the user picks another role or exits.
func (c *analyzer) loop(ctx context.Context, state *session.State) (string, error) {
	for {
		_, action, err := actionPrompt.Run()
		if err != nil {
			return "", err
		}

		if action == PromptAnotherRole {
			return selectRole(state.Analysis)
		}

		if err := c.handleAction(ctx, action, state); err != nil {
			return "", err
		}
	}
}

func (c *analyzer) handleAction(ctx context.Context, action string, state *session.State) error {
	switch action {
	case PromptOutreach, PromptCoverLetter, PromptInterview:
		job, err := selectJob(state.Opportunities)
		if err != nil || job == nil {
			return err
		}

		switch action {
		case PromptOutreach:
			fmt.Println(c.app.artifacts.Outreach(ctx, *job, state.Analysis))
		case PromptCoverLetter:
			fmt.Println(c.app.artifacts.CoverLetter(ctx, *job, state.Analysis))
		default:
			return c.interview(ctx, *job, state.Analysis)
		}
		return nil
	case PromptReportByCompany:
		pretty, err := prettyJSON(opportunity.ReportByCompany(state.Opportunities))
		if err != nil {
			return fmt.Errorf("report by companies: %w", err)
		}
		c.logger.Info(pretty, zap.Int("opportunities count", len(state.Opportunities)))
		return nil
	case PromptResultsToFile:
		filename, err := opportunity.DumpToTmpFile(state.Opportunities)
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		c.logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		c.logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		if err := c.sessions.Reset(ctx, c.id); err != nil {
			c.logger.Warn("clearing the session", zap.Error(err))
		}
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// interview asks the generated questions one by one and prints the evaluation of each answer.
// An empty answer skips the question.
func (c *analyzer) interview(ctx context.Context, job opportunity.Opportunity, analysis *profile.Analysis) error {
	questions := c.app.artifacts.InterviewQuestions(ctx, job, analysis)

	for i, question := range questions {
		fmt.Printf("\nQuestion %d/%d: %s\n", i+1, len(questions), question)

		answerPrompt := promptui.Prompt{Label: "Your answer (empty to skip)"}
		answer, err := answerPrompt.Run()
		if err != nil {
			return err
		}

		if strings.TrimSpace(answer) == "" {
			continue
		}

		eval := c.app.artifacts.EvaluateAnswer(ctx, question, answer)
		fmt.Printf("Score: %d/100\nFeedback: %s\nStronger answer: %s\n", eval.Score, eval.Feedback, eval.ImprovedAnswer)
	}
	return nil
}

func selectRole(analysis *profile.Analysis) (string, error) {
	roles := analysis.SuggestedRoles
	if len(roles) == 0 {
		return analysis.PrimaryRole(), nil
	}

	rolePrompt := promptui.Select{
		Label: "Choose a role to search for",
		Items: roles,
	}

	_, role, err := rolePrompt.Run()
	return role, err
}

// selectJob returns nil when the user goes back.
func selectJob(opps []opportunity.Opportunity) (*opportunity.Opportunity, error) {
	items := make([]string, 0, len(opps)+1)
	for _, o := range opps {
		items = append(items, fmt.Sprintf("%s %s / %s / %d%%", o.ID, o.Title, o.Company, o.MatchScore))
	}

	jobPrompt := promptui.Select{
		Label: "Choose an opportunity and press ENTER",
		Items: append(items, PromptBack),
	}

	idx, selected, err := jobPrompt.Run()
	if err != nil {
		return nil, err
	}
	if selected == PromptBack {
		return nil, nil
	}

	return &opps[idx], nil
}

func prettyJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func readInput(cmd *cobra.Command) (profile.Input, error) {
	file, _ := cmd.Flags().GetString("file")
	text, _ := cmd.Flags().GetString("text")

	switch {
	case file != "":
		return cvinput.FromFile(file)
	case strings.TrimSpace(text) != "":
		return profile.TextInput(text), nil
	default:
		return profile.Input{}, errors.New("either --file or --text is required")
	}
}
