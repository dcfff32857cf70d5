package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"dbscout"
	"dbscout/internal/catalog"
	"dbscout/internal/config"
	"dbscout/internal/formatter"
	"dbscout/internal/source"
)

var (
	dbAlias    string
	envFile    string
	format     string
	outputFile string

	searchSchema string
	searchFields string
	searchRegex  bool
	searchLimit  int

	procTable      string
	procText       string
	procName       string
	procSchema     string
	procTypes      string
	procRegex      bool
	procLimit      int
	procLimitLines int

	queryLimit int

	verifyTimeout time.Duration
	verifyAll     bool
)

var rootCmd = &cobra.Command{
	Use:   "dbscout",
	Short: "Inspect database catalogs and run guarded read-only queries",
	Long: `dbscout inspects tables, searches metadata and stored procedure source,
and runs read-only queries against Oracle, MySQL, PostgreSQL, and SQL Server.

Connections are configured through environment variables (or a .env file):
<ALIAS>_TYPE, <ALIAS>_HOST, <ALIAS>_PORT, <ALIAS>_USERNAME, <ALIAS>_PASSWORD,
<ALIAS>_DATABASE (Oracle also accepts <ALIAS>_DSN). Pick the connection with
--db; the default alias DWH falls back to Oracle when DWH_TYPE is unset.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.Load(envFile)
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <schema> <table>",
	Short: "Show columns, indexes, partitions, and statistics for a table",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		schema, table, err := splitTableArgs(args)
		if err != nil {
			return err
		}

		info, err := dbscout.InspectTable(context.Background(), dbAlias, schema, table)
		if err != nil {
			return err
		}

		return withOutput(func(out *output) error {
			switch format {
			case "text":
				return out.text.FormatTable(info)
			case "markdown":
				return out.markdown.FormatTable(info)
			case "json":
				return out.json.Format(info)
			}
			return invalidFormat()
		})
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <keyword>",
	Short: "Find tables and columns by name or comment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := catalog.SearchOptions{
			Keyword: args[0],
			Schema:  searchSchema,
			Regex:   searchRegex,
			Limit:   searchLimit,
		}
		if searchFields != "" {
			opts.Fields = splitList(searchFields)
		}

		matches, err := dbscout.SearchMetadata(context.Background(), dbAlias, opts)
		if err != nil {
			return err
		}

		return withOutput(func(out *output) error {
			switch format {
			case "text":
				return out.text.FormatColumnMatches(matches)
			case "markdown":
				return out.markdown.FormatColumnMatches(matches)
			case "json":
				return out.json.Format(matches)
			}
			return invalidFormat()
		})
	},
}

var proceduresCmd = &cobra.Command{
	Use:   "procedures",
	Short: "Search stored procedure source, or fetch an object by name (Oracle)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if procTable == "" && procText == "" && procName == "" {
			return fmt.Errorf("need at least one of --table, --text, or --name")
		}

		opts := source.Options{
			Table:       procTable,
			Text:        procText,
			Name:        procName,
			Schema:      procSchema,
			Regex:       procRegex,
			ObjectLimit: procLimit,
			LineLimit:   procLimitLines,
		}
		if procTypes != "" {
			opts.Types = splitList(procTypes)
		}

		matches, err := dbscout.SearchProcedures(context.Background(), dbAlias, opts)
		if err != nil {
			return err
		}

		return withOutput(func(out *output) error {
			switch format {
			case "text":
				return out.text.FormatSourceMatches(matches)
			case "markdown":
				return out.markdown.FormatSourceMatches(matches)
			case "json":
				return out.json.Format(matches)
			}
			return invalidFormat()
		})
	},
}

var queryCmd = &cobra.Command{
	Use:   "query <sql>",
	Short: "Run a read-only query with a row cap",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := dbscout.RunQuery(context.Background(), dbAlias, args[0], queryLimit)
		if err != nil {
			return err
		}

		return withOutput(func(out *output) error {
			switch format {
			case "text":
				return out.text.FormatResult(result)
			case "markdown":
				return out.markdown.FormatResult(result)
			case "json":
				return out.json.Format(result)
			}
			return invalidFormat()
		})
	},
}

var explainCmd = &cobra.Command{
	Use:   "explain <sql>",
	Short: "Show the execution plan for a read-only query",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, err := dbscout.ExplainQuery(context.Background(), dbAlias, args[0])
		if err != nil {
			return err
		}

		return withOutput(func(out *output) error {
			switch format {
			case "text":
				return out.text.FormatPlan(plan)
			case "markdown":
				return out.markdown.FormatPlan(plan)
			case "json":
				return out.json.Format(plan)
			}
			return invalidFormat()
		})
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify [alias...]",
	Short: "Check that connections work",
	Long: `Verify opens each named connection and runs a ping statement. With no
arguments it verifies the --db alias; "verify --all" checks every alias
found in the environment.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		aliases := args
		if verifyAll {
			aliases = nil
			for _, conn := range config.ListConnections() {
				aliases = append(aliases, conn.Alias)
			}
			if len(aliases) == 0 {
				fmt.Println("No connections configured.")
				return nil
			}
		}
		if len(aliases) == 0 {
			aliases = []string{dbAlias}
		}

		failed := 0
		for _, alias := range aliases {
			if err := dbscout.VerifyConnection(context.Background(), alias, verifyTimeout); err != nil {
				fmt.Fprintf(os.Stderr, "connection %s FAILED: %v\n", strings.ToUpper(alias), err)
				failed++
				continue
			}
			fmt.Printf("connection %s OK\n", strings.ToUpper(alias))
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d connection(s) failed", failed, len(aliases))
		}
		return nil
	},
}

var connectionsCmd = &cobra.Command{
	Use:   "connections",
	Short: "List connection aliases found in the environment",
	RunE: func(cmd *cobra.Command, args []string) error {
		conns := config.ListConnections()
		if len(conns) == 0 {
			fmt.Println("No connections configured.")
			return nil
		}
		for _, conn := range conns {
			fmt.Printf("%s\t%s\n", conn.Alias, conn.Kind)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbAlias, "db", config.LegacyDefaultAlias, "Connection alias")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "Path to .env file")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "f", "text", "Output format: text, markdown, or json")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	searchCmd.Flags().StringVarP(&searchSchema, "schema", "s", "", "Filter by schema/owner")
	searchCmd.Flags().StringVar(&searchFields, "fields", "", "Where to match: names, comments (default: both)")
	searchCmd.Flags().BoolVar(&searchRegex, "regex", false, "Treat the keyword as a regex")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "Maximum matches (default: 200)")

	proceduresCmd.Flags().StringVarP(&procTable, "table", "t", "", "Table name to search for in source")
	proceduresCmd.Flags().StringVarP(&procText, "text", "e", "", "Any string to search for in source")
	proceduresCmd.Flags().StringVarP(&procName, "name", "n", "", "Fetch by object name (NAME or SCHEMA.NAME)")
	proceduresCmd.Flags().StringVarP(&procSchema, "schema", "s", "", "Filter by owner/schema")
	proceduresCmd.Flags().StringVar(&procTypes, "type", "", "Object types, comma-separated (default: PROCEDURE,PACKAGE,PACKAGE BODY,FUNCTION)")
	proceduresCmd.Flags().BoolVar(&procRegex, "regex", false, "Treat --table and --text as regex")
	proceduresCmd.Flags().IntVar(&procLimit, "limit", 0, "Maximum objects (default: 100)")
	proceduresCmd.Flags().IntVar(&procLimitLines, "limit-lines", 0, "Max source lines per object; 0 = no limit")

	queryCmd.Flags().IntVar(&queryLimit, "limit", 0, "Maximum rows (default: 100)")

	verifyCmd.Flags().DurationVar(&verifyTimeout, "timeout", 0, "Connection timeout (default: 15s)")
	verifyCmd.Flags().BoolVar(&verifyAll, "all", false, "Verify every alias found in the environment")

	rootCmd.AddCommand(inspectCmd, searchCmd, proceduresCmd, queryCmd, explainCmd, verifyCmd, connectionsCmd)
}

type output struct {
	text     *formatter.TextFormatter
	markdown *formatter.MarkdownFormatter
	json     *formatter.JSONFormatter
}

// withOutput runs fn against formatters bound to stdout or --output.
func withOutput(fn func(*output) error) error {
	writer := os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to close output file: %v\n", err)
			}
		}()
		writer = f
	}

	return fn(&output{
		text:     formatter.NewTextFormatter(writer),
		markdown: formatter.NewMarkdownFormatter(writer),
		json:     formatter.NewJSONFormatter(writer),
	})
}

func invalidFormat() error {
	return fmt.Errorf("invalid format: %s (must be 'text', 'markdown', or 'json')", format)
}

// splitTableArgs accepts either "SCHEMA TABLE" or a single "SCHEMA.TABLE".
func splitTableArgs(args []string) (schema, table string, err error) {
	if len(args) == 2 {
		return args[0], args[1], nil
	}
	schema, table, ok := strings.Cut(args[0], ".")
	if !ok || schema == "" || table == "" {
		return "", "", fmt.Errorf("expected <schema> <table> or <schema>.<table>, got %q", args[0])
	}
	return schema, table, nil
}

// splitList splits a comma-separated flag value, trimming blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
