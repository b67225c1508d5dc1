package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const version = "0.2.0"

func main() {
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	// stdout carries the MCP protocol, logs go to stderr.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(*logLevel)})))

	// 1. 初始化 MCP 服务器
	mcpServer := server.NewMCPServer(
		"TransactionAnalyzer",
		version,
		server.WithLogging(),
		server.WithRecovery(),
	)

	// 2. 定义 analyze_transactions 工具及其参数
	analyzeTool := mcp.NewTool("analyze_transactions",
		mcp.WithDescription("Parse a transaction trace log and report per-transaction duration and overhead (idle time before the next transaction) with min/avg/max statistics."),
		mcp.WithString("log_uri",
			mcp.Description("Log to analyse: a local path, 'file://' URI or 'http(s)://' URL. '.zst' and '.gz' logs are decompressed."),
			mcp.Required(),
		),
		mcp.WithString("reference_date",
			mcp.Description("Calendar date (YYYY-MM-DD) the log's time-of-day stamps belong to. Defaults to today (UTC)."),
		),
		mcp.WithString("output_format",
			mcp.Description("Output format of the report."),
			mcp.DefaultString("text"),
			mcp.Enum("text", "markdown", "json", "csv"),
		),
		mcp.WithNumber("max_rows",
			mcp.Description("Maximum number of transactions listed in the report; 0 lists all."),
			mcp.DefaultNumber(0),
		),
	)

	// 3. 定义 export_transaction_profile 工具
	exportTool := mcp.NewTool("export_transaction_profile",
		mcp.WithDescription("Convert a transaction trace log into a pprof profile (sample types duration and overhead, in nanoseconds) that can be opened with 'go tool pprof'."),
		mcp.WithString("log_uri",
			mcp.Description("Log to convert: a local path, 'file://' URI or 'http(s)://' URL."),
			mcp.Required(),
		),
		mcp.WithString("reference_date",
			mcp.Description("Calendar date (YYYY-MM-DD) the log's time-of-day stamps belong to. Defaults to today (UTC)."),
		),
		mcp.WithString("output_path",
			mcp.Description("Where to write the profile (absolute, or relative to the server's working directory)."),
			mcp.Required(),
		),
	)

	// 4. 定义 compare_transaction_logs 工具
	compareTool := mcp.NewTool("compare_transaction_logs",
		mcp.WithDescription("Compare two transaction trace logs (e.g. before and after a firmware update) and report duration and overhead aggregates that grew beyond a threshold."),
		mcp.WithString("base_log_uri",
			mcp.Description("The earlier (baseline) log: local path, 'file://' URI or 'http(s)://' URL."),
			mcp.Required(),
		),
		mcp.WithString("target_log_uri",
			mcp.Description("The later log to compare against the baseline."),
			mcp.Required(),
		),
		mcp.WithString("base_reference_date",
			mcp.Description("Calendar date (YYYY-MM-DD) of the baseline log. Defaults to today (UTC)."),
		),
		mcp.WithString("target_reference_date",
			mcp.Description("Calendar date (YYYY-MM-DD) of the target log. Defaults to the baseline date."),
		),
		mcp.WithNumber("threshold",
			mcp.Description("Growth threshold as a fraction (0.1 = 10%)."),
			mcp.DefaultNumber(0.1),
		),
	)

	mcpServer.AddTool(analyzeTool, handleAnalyzeTransactions)
	mcpServer.AddTool(exportTool, handleExportTransactionProfile)
	mcpServer.AddTool(compareTool, handleCompareTransactionLogs)

	slog.Info("starting TransactionAnalyzer MCP server via stdio", "version", version)
	if err := server.ServeStdio(mcpServer); err != nil {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
