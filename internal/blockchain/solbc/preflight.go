// internal/blockchain/solbc/preflight.go
package solbc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
)

// PreflightFailure описывает ошибку симуляции транзакции, возвращённую узлом.
type PreflightFailure struct {
	Code             int
	Message          string
	Logs             []string
	InstructionError interface{}
}

// AnalyzePreflight извлекает детали симуляции из ошибки RPC. Второе значение
// false, если ошибка не связана с preflight.
func AnalyzePreflight(err error) (*PreflightFailure, bool) {
	var rpcErr *jsonrpc.RPCError
	if !errors.As(err, &rpcErr) {
		return nil, false
	}
	if !strings.Contains(rpcErr.Message, "Transaction simulation failed") {
		return nil, false
	}

	failure := &PreflightFailure{Code: rpcErr.Code, Message: rpcErr.Message}
	data, ok := rpcErr.Data.(map[string]interface{})
	if !ok {
		return failure, true
	}
	if logs, ok := data["logs"].([]interface{}); ok {
		for _, entry := range logs {
			if s, ok := entry.(string); ok {
				failure.Logs = append(failure.Logs, s)
			}
		}
	}
	if instrErr, ok := data["err"]; ok {
		failure.InstructionError = instrErr
	}
	return failure, true
}

// LastProgramError возвращает последнюю строку логов с ошибкой программы.
func (f *PreflightFailure) LastProgramError() string {
	for i := len(f.Logs) - 1; i >= 0; i-- {
		line := f.Logs[i]
		if strings.Contains(line, "failed:") || strings.Contains(line, "Error Message:") {
			return line
		}
	}
	return ""
}

func (f *PreflightFailure) String() string {
	return fmt.Sprintf("preflight failed (code %d): %s", f.Code, f.LastProgramError())
}
