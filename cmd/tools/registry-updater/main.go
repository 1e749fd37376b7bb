// cmd/tools/registry-updater/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"delegation-workers/internal/common/validation"
	"delegation-workers/pkg/registry"
)

const defaultRegistryPath = "configs/activity-registry.json"

// requiredTaskTypes are the task types the worker manager registers.
var requiredTaskTypes = []string{
	"find-provider-matches",
	"auto-assign-provider",
	"estimate-price",
	"judge-submission",
	"aggregate-evaluation",
	"notify-assignment",
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) < 1 {
		help(out)
		return fmt.Errorf("a command is required")
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		path := fs.String("path", defaultRegistryPath, "Path to registry file")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		return validateRegistry(*path, out)

	case "list":
		fs := flag.NewFlagSet("list", flag.ContinueOnError)
		path := fs.String("path", defaultRegistryPath, "Path to registry file")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		return listActivities(*path, out)

	case "check":
		fs := flag.NewFlagSet("check", flag.ContinueOnError)
		path := fs.String("path", defaultRegistryPath, "Path to registry file")
		taskType := fs.String("taskType", "", "Task type whose input schema is applied")
		vars := fs.String("vars", "", "JSON file with job variables")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *taskType == "" || *vars == "" {
			return fmt.Errorf("taskType and vars are required for check")
		}
		return checkVariables(*path, *taskType, *vars, out)

	case "update":
		fs := flag.NewFlagSet("update", flag.ContinueOnError)
		path := fs.String("path", defaultRegistryPath, "Path to registry file")
		taskType := fs.String("taskType", "", "Task type to update")
		field := fs.String("field", "", "Field to update (version, displayName, description, timeout, retries)")
		value := fs.String("value", "", "New value for the field")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *taskType == "" || *field == "" || *value == "" {
			return fmt.Errorf("taskType, field, and value are required for update")
		}
		if err := updateActivity(*path, *taskType, *field, *value); err != nil {
			return err
		}
		fmt.Fprintf(out, "Updated activity %s, field %s to %s\n", *taskType, *field, *value)
		return nil

	case "help":
		help(out)
		return nil
	default:
		help(out)
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

// validateRegistry checks required fields, compiles every input schema and
// confirms each worker task type is registered.
func validateRegistry(path string, out io.Writer) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	var problems []string
	for _, activity := range reg.Activities {
		if activity.ID == "" {
			problems = append(problems, fmt.Sprintf("activity %s missing required field: ID", activity.TaskType))
		}
		if activity.DisplayName == "" {
			problems = append(problems, fmt.Sprintf("activity %s missing required field: DisplayName", activity.TaskType))
		}
		if activity.Category == "" {
			problems = append(problems, fmt.Sprintf("activity %s missing required field: Category", activity.TaskType))
		}
		if activity.Timeout != "" {
			if _, err := time.ParseDuration(activity.Timeout); err != nil {
				problems = append(problems, fmt.Sprintf("activity %s has invalid timeout %q", activity.TaskType, activity.Timeout))
			}
		}
	}
	for _, taskType := range requiredTaskTypes {
		if _, ok := reg.Find(taskType); !ok {
			problems = append(problems, fmt.Sprintf("task type %s is not registered", taskType))
		}
	}
	if _, err := validation.NewValidator(reg); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return fmt.Errorf("registry validation failed:\n  %s", strings.Join(problems, "\n  "))
	}

	fmt.Fprintf(out, "Registry validation passed. Found %d activities.\n", len(reg.Activities))
	return nil
}

func listActivities(path string, out io.Writer) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	activities := append([]registry.Activity(nil), reg.Activities...)
	sort.Slice(activities, func(i, j int) bool {
		if activities[i].Category != activities[j].Category {
			return activities[i].Category < activities[j].Category
		}
		return activities[i].TaskType < activities[j].TaskType
	})

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tTASK TYPE\tVERSION\tTIMEOUT\tRETRIES\tERROR CODES")
	for _, a := range activities {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			a.Category, a.TaskType, a.Version, a.Timeout, a.Retries, strings.Join(a.ErrorCodes, ","))
	}
	return tw.Flush()
}

// checkVariables applies a task type's input schema to a variables file.
func checkVariables(path, taskType, varsPath string, out io.Writer) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	schema := reg.SchemaFor(taskType)
	if schema == nil {
		return fmt.Errorf("no input schema registered for %s", taskType)
	}

	raw, err := os.ReadFile(varsPath)
	if err != nil {
		return fmt.Errorf("failed to read variables: %w", err)
	}
	if err := validation.ValidateVariables(schema, raw); err != nil {
		return err
	}

	fmt.Fprintf(out, "Variables are valid for %s.\n", taskType)
	return nil
}

func updateActivity(path, taskType, field, value string) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	activity, ok := reg.Find(taskType)
	if !ok {
		return fmt.Errorf("activity with task type %s not found", taskType)
	}

	switch field {
	case "version":
		activity.Version = value
	case "displayName":
		activity.DisplayName = value
	case "description":
		activity.Description = value
	case "timeout":
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid timeout value: %w", err)
		}
		activity.Timeout = value
	case "retries":
		retries, err := strconv.Atoi(value)
		if err != nil || retries < 0 {
			return fmt.Errorf("invalid retries value: %s", value)
		}
		activity.Retries = retries
	default:
		return fmt.Errorf("unknown field: %s", field)
	}

	reg.LastUpdated = time.Now().Format("2006-01-02")
	return saveRegistry(reg, path)
}

// saveRegistry handles saving the registry to file
func saveRegistry(reg *registry.ActivityRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

func help(out io.Writer) {
	fmt.Fprintln(out, `
Usage: registry-updater <command> [flags]

Commands:
  validate  Validate the registry file and compile its input schemas
  list      List registered activities
  check     Validate a job variables file against a task type's input schema
  update    Update an existing activity's field
  help      Show this help message

Examples:
  registry-updater validate -path configs/activity-registry.json
  registry-updater check -taskType auto-assign-provider -vars vars.json
  registry-updater update -taskType judge-submission -field timeout -value 120s

Use 'registry-updater <command> -h' for more information about a command.`)
}
