package commands

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"student-scores/apperr"
	"student-scores/models"
	"student-scores/printer"
)

var studentsCmd = &cobra.Command{
	Use:   "students",
	Short: "Read and change the reconciled student view",
}

var studentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every student",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := newClient().ListStudents(cmd.Context(), subject)
		if err != nil {
			return failed(cmd, "Could not list students", err)
		}
		printer.Students(cmd.OutOrStdout(), records)
		return nil
	},
}

var studentsGetCmd = &cobra.Command{
	Use:   "get <identifier>",
	Short: "Show one student",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		record, err := newClient().GetStudent(cmd.Context(), subject, args[0])
		if err != nil {
			return failed(cmd, "Could not read student", err)
		}
		printer.Students(cmd.OutOrStdout(), []models.StudentRecord{*record})
		return nil
	},
}

var studentsPatchCmd = &cobra.Command{
	Use:   "patch <identifier>",
	Short: "Set or clear scores; pass null to clear",
	Example: `  scorectl students patch 6547 --fall 91
  scorectl students patch 006547 --spring null --first Itzhak`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := patchFromFlags(cmd, args[0])
		if err != nil {
			return failed(cmd, "Invalid patch", err)
		}
		res, err := newClient().PatchStudent(cmd.Context(), req)
		if err != nil {
			return failed(cmd, "Patch rejected", err)
		}
		printer.Success(cmd.OutOrStdout(), "updated %s (prior=%t fall=%t spring=%t)",
			res.Identifier, res.Updated.Prior, res.Updated.Fall, res.Updated.Spring)
		return nil
	},
}

var studentsDeleteCmd = &cobra.Command{
	Use:   "delete <identifier>",
	Short: "Remove a student from every source set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newClient().DeleteStudent(cmd.Context(), args[0]); err != nil {
			return failed(cmd, "Delete failed", err)
		}
		printer.Success(cmd.OutOrStdout(), "deleted %s", args[0])
		return nil
	},
}

func addPatchFlags(cmd *cobra.Command) {
	cmd.Flags().String("prior", "", "prior-year score, or null")
	cmd.Flags().String("staar", "", "alias of --prior")
	cmd.Flags().String("fall", "", "fall checkpoint score, or null")
	cmd.Flags().String("spring", "", "spring checkpoint score, or null")
	cmd.Flags().String("first", "", "first name")
	cmd.Flags().String("last", "", "last name")
}

// patchFromFlags builds a patch from the flags that were given; absent
// flags stay untouched and "null" clears a score.
func patchFromFlags(cmd *cobra.Command, identifier string) (models.PatchRequest, error) {
	req := models.PatchRequest{Identifier: identifier}
	scores := []struct {
		flag string
		dst  *models.OptionalFloat
	}{
		{"prior", &req.PriorScore},
		{"staar", &req.StaarScore},
		{"fall", &req.FallScore},
		{"spring", &req.SpringScore},
	}
	for _, s := range scores {
		if !cmd.Flags().Changed(s.flag) {
			continue
		}
		raw, _ := cmd.Flags().GetString(s.flag)
		v, err := parseScore(raw)
		if err != nil {
			return req, apperr.Validationf("--%s: %v", s.flag, err)
		}
		*s.dst = v
	}
	if cmd.Flags().Changed("first") {
		v, _ := cmd.Flags().GetString("first")
		req.FirstName = models.SetString(v)
	}
	if cmd.Flags().Changed("last") {
		v, _ := cmd.Flags().GetString("last")
		req.LastName = models.SetString(v)
	}
	return req, nil
}

func parseScore(raw string) (models.OptionalFloat, error) {
	raw = strings.TrimSpace(raw)
	if strings.EqualFold(raw, "null") {
		return models.ClearFloat(), nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return models.OptionalFloat{}, err
	}
	return models.SetFloat(v), nil
}

// failed prints err through the printer and returns the title for cobra.
func failed(cmd *cobra.Command, title string, err error) error {
	msg, hint := apperr.Message(err), ""
	switch apperr.KindOf(err) {
	case apperr.Transport:
		msg = err.Error()
		hint = "Check that the service is reachable at " + serverURL + "."
	case apperr.NotFound:
		hint = "Run 'scorectl students list' to see known identifiers."
	}
	return printer.Error(cmd.ErrOrStderr(), title, msg, hint)
}

func init() {
	addPatchFlags(studentsPatchCmd)
	studentsCmd.AddCommand(studentsListCmd, studentsGetCmd, studentsPatchCmd, studentsDeleteCmd)
	rootCmd.AddCommand(studentsCmd)
}
