package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// NewCaseCmd создаёт группу команд для управления делами.
func NewCaseCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "case",
		Short: "Manage onboarding cases",
	}

	cmd.AddCommand(
		newCaseListCmd(clientFn, outputFn),
		newCaseInitCmd(clientFn, outputFn),
		newCaseShowCmd(clientFn, outputFn),
		newCaseStepCmd(clientFn, outputFn),
		newCaseStatusCmd(clientFn, outputFn),
		newCaseDeleteCmd(clientFn, outputFn),
		newCaseOrchestrateCmd(clientFn, outputFn),
		newCasePlanCmd(clientFn, outputFn),
		newCaseEventsCmd(clientFn, outputFn),
	)

	return cmd
}

func caseRow(cs CaseResponse) []string {
	return []string{
		cs.CaseID, cs.ApplicationNumber, cs.CandidateName,
		cs.Status, cs.RiskStatus, strconv.Itoa(len(cs.CompletedSteps)),
	}
}

var caseHeaders = []string{"CASE_ID", "APPLICATION", "CANDIDATE", "STATUS", "RISK", "STEPS"}

func newCaseListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cases",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			cases, err := client.ListCases()
			if err != nil {
				return err
			}

			rows := make([][]string, len(cases))
			for i, cs := range cases {
				rows[i] = caseRow(cs)
			}
			out.Print(caseHeaders, rows, cases)
			return nil
		},
	}
}

func newCaseInitCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var caseID string
	var seedPairs []string

	cmd := &cobra.Command{
		Use:   "init APPLICATION_NUMBER",
		Short: "Create or fetch a case by application number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			req := InitCaseRequest{
				ApplicationNumber: args[0],
				CaseID:            caseID,
			}
			if len(seedPairs) > 0 {
				req.Seed = make(map[string]any)
				for _, kv := range seedPairs {
					parts := strings.SplitN(kv, "=", 2)
					if len(parts) != 2 {
						return fmt.Errorf("invalid seed format %q, expected KEY=VALUE", kv)
					}
					req.Seed[parts[0]] = parts[1]
				}
			}

			cs, err := client.InitCase(req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Case ready: %s", cs.CaseID))
			out.Print(caseHeaders, [][]string{caseRow(*cs)}, cs)
			return nil
		},
	}

	cmd.Flags().StringVar(&caseID, "case-id", "", "Stable case ID (promotes a provisional one)")
	cmd.Flags().StringSliceVar(&seedPairs, "seed", nil, "Seed values as KEY=VALUE (repeatable, e.g. startDate=2026-10-01)")

	return cmd
}

func newCaseShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show CASE_ID",
		Short: "Show case details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			cs, err := client.GetCase(args[0])
			if err != nil {
				return err
			}

			out.Print(caseHeaders, [][]string{caseRow(*cs)}, cs)
			return nil
		},
	}
}

func newCaseStepCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var payloadJSON string
	var nextIndex int

	cmd := &cobra.Command{
		Use:   "step CASE_ID STEP_KEY",
		Short: "Save a candidate step payload",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			req := SaveStepRequest{Payload: map[string]any{}}
			if payloadJSON != "" {
				if err := json.Unmarshal([]byte(payloadJSON), &req.Payload); err != nil {
					return fmt.Errorf("invalid --payload JSON: %w", err)
				}
			}
			if cmd.Flags().Changed("next-index") {
				req.NextStepIndex = &nextIndex
			}

			cs, err := client.SaveStep(args[0], args[1], req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Step %s saved", args[1]))
			out.Print(caseHeaders, [][]string{caseRow(*cs)}, cs)
			return nil
		},
	}

	cmd.Flags().StringVar(&payloadJSON, "payload", "", "Step payload as JSON object")
	cmd.Flags().IntVar(&nextIndex, "next-index", 0, "Advance the wizard cursor to this index")

	return cmd
}

func newCaseStatusCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "status CASE_ID STATUS",
		Short: "Set case lifecycle status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			cs, err := client.SetStatus(args[0], args[1])
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Status set to %s", cs.Status))
			out.Print(caseHeaders, [][]string{caseRow(*cs)}, cs)
			return nil
		},
	}
}

func newCaseDeleteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "delete CASE_ID",
		Short: "Delete a case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if err := client.DeleteCase(args[0]); err != nil {
				return err
			}
			out.Success(fmt.Sprintf("Case %s deleted", args[0]))
			return nil
		},
	}
}

func newCaseOrchestrateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var notes string

	cmd := &cobra.Command{
		Use:   "orchestrate CASE_ID",
		Short: "Run the orchestrator for a case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			res, err := client.Orchestrate(args[0], notes)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Run finished: %s / %s",
				res.Plan.OverallStatus, decisionOf(res.Plan)))
			printPlan(out, res.Plan)
			return nil
		},
	}

	cmd.Flags().StringVar(&notes, "notes", "", "Operator notes passed to agents")

	return cmd
}

func newCasePlanCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "plan CASE_ID",
		Short: "Show the plan from the last orchestrator run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			plan, err := client.GetPlan(args[0])
			if err != nil {
				return err
			}
			printPlan(out, *plan)
			return nil
		},
	}
}

func newCaseEventsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "events CASE_ID",
		Short: "Show recent case events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			events, err := client.ListEvents(args[0])
			if err != nil {
				return err
			}

			headers := []string{"TS", "TYPE"}
			rows := make([][]string, len(events))
			for i, evt := range events {
				rows[i] = []string{evt.Timestamp, evt.Type}
			}
			out.Print(headers, rows, events)
			return nil
		},
	}
}

func decisionOf(plan PlanResponse) string {
	if rec, ok := plan.Decision["primaryRecommendation"].(string); ok {
		return rec
	}
	return "?"
}

func printPlan(out *Output, plan PlanResponse) {
	headers := []string{"FIELD", "VALUE"}
	rows := [][]string{
		{"caseId", plan.CaseID},
		{"overallStatus", plan.OverallStatus},
		{"decision", decisionOf(plan)},
		{"conflicts", strconv.Itoa(len(plan.Conflicts))},
	}
	for _, cf := range plan.Conflicts {
		t, _ := cf["type"].(string)
		msg, _ := cf["message"].(string)
		rows = append(rows, []string{"  " + t, msg})
	}
	for agent, summary := range plan.AgentSummaries {
		rows = append(rows, []string{"  " + agent, summary})
	}
	out.Print(headers, rows, plan)
}
