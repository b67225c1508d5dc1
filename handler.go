package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mmame/txntools/analyzer"
	"github.com/mmame/txntools/logsource"
)

// handleAnalyzeTransactions 处理 MCP 工具 "analyze_transactions" 的请求。
func handleAnalyzeTransactions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments

	// --- 1. 获取并验证参数 ---
	logURI, ok := args["log_uri"].(string)
	if !ok || logURI == "" {
		return nil, fmt.Errorf("missing or invalid required argument: log_uri (string)")
	}
	dateStr, _ := args["reference_date"].(string)
	outputFormat, ok := args["output_format"].(string)
	if !ok || outputFormat == "" {
		outputFormat = "text"
	}
	maxRowsFloat, ok := args["max_rows"].(float64)
	if !ok || maxRowsFloat < 0 {
		maxRowsFloat = 0
	}
	maxRows := int(maxRowsFloat)

	slog.Info("handling analyze_transactions", "uri", logURI, "referenceDate", dateStr, "format", outputFormat, "maxRows", maxRows)

	refDate, err := analyzer.ParseReferenceDate(dateStr)
	if err != nil {
		return nil, err
	}

	// --- 2. 读取并解析日志 ---
	res, err := logsource.Load(ctx, logURI, refDate)
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction log: %w", err)
	}

	// --- 3. 分析并格式化 ---
	report, err := analyzer.AnalyzeTransactions(res, maxRows, outputFormat)
	if err != nil {
		slog.Error("analysis failed", "uri", logURI, "err", err)
		return nil, err
	}

	slog.Info("analysis successful", "uri", logURI, "records", len(res.Records), "resultLength", len(report))
	return textResult(report), nil
}

// handleExportTransactionProfile 处理 MCP 工具 "export_transaction_profile" 的请求。
func handleExportTransactionProfile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments

	logURI, ok := args["log_uri"].(string)
	if !ok || logURI == "" {
		return nil, fmt.Errorf("missing or invalid required argument: log_uri (string)")
	}
	outputPath, ok := args["output_path"].(string)
	if !ok || outputPath == "" {
		return nil, fmt.Errorf("missing or invalid required argument: output_path (string)")
	}
	dateStr, _ := args["reference_date"].(string)

	slog.Info("handling export_transaction_profile", "uri", logURI, "referenceDate", dateStr, "output", outputPath)

	refDate, err := analyzer.ParseReferenceDate(dateStr)
	if err != nil {
		return nil, err
	}

	// 如果不是绝对路径，则假定它是相对于当前工作目录的
	if !filepath.IsAbs(outputPath) {
		abs, err := filepath.Abs(outputPath)
		if err != nil {
			return nil, fmt.Errorf("resolve output path '%s': %w", outputPath, err)
		}
		outputPath = abs
	}

	res, err := logsource.Load(ctx, logURI, refDate)
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction log: %w", err)
	}
	records := analyzer.ComputeOverheads(res.Records)

	if err := writeProfileFile(outputPath, records); err != nil {
		slog.Error("profile export failed", "output", outputPath, "err", err)
		return nil, err
	}

	slog.Info("profile exported", "output", outputPath, "records", len(records))
	return textResult(fmt.Sprintf(
		"Transaction profile with %d transaction(s) written to: %s\nOpen it with: go tool pprof -sample_index=overhead %s",
		len(records), outputPath, outputPath,
	)), nil
}

// handleCompareTransactionLogs 处理 MCP 工具 "compare_transaction_logs" 的请求。
func handleCompareTransactionLogs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments

	baseURI, ok := args["base_log_uri"].(string)
	if !ok || baseURI == "" {
		return nil, fmt.Errorf("missing or invalid required argument: base_log_uri (string)")
	}
	targetURI, ok := args["target_log_uri"].(string)
	if !ok || targetURI == "" {
		return nil, fmt.Errorf("missing or invalid required argument: target_log_uri (string)")
	}
	baseDateStr, _ := args["base_reference_date"].(string)
	targetDateStr, _ := args["target_reference_date"].(string)
	if targetDateStr == "" {
		targetDateStr = baseDateStr
	}
	threshold, ok := args["threshold"].(float64)
	if !ok || threshold <= 0 {
		threshold = 0.1
	}

	slog.Info("handling compare_transaction_logs", "base", baseURI, "target", targetURI, "threshold", threshold)

	baseDate, err := analyzer.ParseReferenceDate(baseDateStr)
	if err != nil {
		return nil, err
	}
	targetDate, err := analyzer.ParseReferenceDate(targetDateStr)
	if err != nil {
		return nil, err
	}

	base, err := logsource.Load(ctx, baseURI, baseDate)
	if err != nil {
		return nil, fmt.Errorf("failed to load base log: %w", err)
	}
	target, err := logsource.Load(ctx, targetURI, targetDate)
	if err != nil {
		return nil, fmt.Errorf("failed to load target log: %w", err)
	}

	report, err := analyzer.CompareLogs(base.Records, target.Records, threshold)
	if err != nil {
		slog.Error("comparison failed", "base", baseURI, "target", targetURI, "err", err)
		return nil, err
	}
	return textResult(report), nil
}

func writeProfileFile(path string, records []analyzer.TransactionRecord) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create profile file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close profile file: %w", cerr)
		}
	}()
	return analyzer.WriteProfile(f, records)
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: text,
			},
		},
	}
}
