package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"seniorsync/internal/healthcheck"
)

// readTranscript 读取对话记录：ChatTurn 数组，或 {"messages": [...]}（/ai/chat 请求体）
func readTranscript(path string) ([]healthcheck.ChatTurn, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	data = bytes.TrimSpace(data)

	var turns []healthcheck.ChatTurn
	if len(data) > 0 && data[0] == '[' {
		if err := json.Unmarshal(data, &turns); err != nil {
			return nil, fmt.Errorf("parse transcript: %w", err)
		}
		return turns, nil
	}

	var wrapped struct {
		Messages []healthcheck.ChatTurn `json:"messages"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("parse transcript: %w", err)
	}
	return wrapped.Messages, nil
}

// pipelineResult scan 输出
type pipelineResult struct {
	Accumulator healthcheck.Accumulator  `json:"accumulator"`
	Report      healthcheck.HealthReport `json:"report"`
	Evaluation  healthcheck.Evaluation   `json:"evaluation"`
}

func runPipeline(turns []healthcheck.ChatTurn, window int, summary string) pipelineResult {
	catalog := healthcheck.DefaultCatalog()
	acc := healthcheck.NewScanner(catalog, window).Scan(turns)
	report := healthcheck.NewCoercer(catalog).Coerce(acc, summary)
	return pipelineResult{
		Accumulator: acc,
		Report:      report,
		Evaluation:  healthcheck.Evaluate(report),
	}
}
