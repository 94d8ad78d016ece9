package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/queryai/queryai/internal/schema"
)

// ShowFormArgs are the validated inputs of the showForm tool.
type ShowFormArgs struct {
	TableName   string `json:"tableName"`
	ButtonLabel string `json:"buttonLabel"`
	Message     string `json:"message"`
}

// FormDescriptor is the showForm tool output on success.
type FormDescriptor struct {
	TableName   string              `json:"tableName"`
	ButtonLabel string              `json:"buttonLabel"`
	Message     string              `json:"message"`
	Schema      *schema.TableSchema `json:"schema"`
}

// ShowFormTool looks up a table in the schema registry and returns a form
// descriptor for it. An unknown table produces an inline error payload,
// not a tool failure.
func ShowFormTool() Tool {
	return Tool{
		Name:        "showForm",
		Description: "Show a data entry form to the user for creating new records in the database",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"tableName": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"users", "orders", "products"},
					"description": "The table to insert data into",
				},
				"buttonLabel": map[string]interface{}{
					"type":        "string",
					"description": "Label for the button that opens the form",
				},
				"message": map[string]interface{}{
					"type":        "string",
					"description": "Friendly message to show before the button",
				},
			},
			"required": []string{"tableName", "buttonLabel", "message"},
		},
		Execute: func(ctx context.Context, input map[string]interface{}) (string, error) {
			var args ShowFormArgs
			if err := decodeArgs(input, &args); err != nil {
				return "", err
			}

			tableSchema := schema.Get(args.TableName)
			if tableSchema == nil {
				b, _ := json.Marshal(map[string]string{
					"error": fmt.Sprintf("Table %s not found", args.TableName),
				})
				return string(b), nil
			}

			b, err := json.Marshal(FormDescriptor{
				TableName:   args.TableName,
				ButtonLabel: args.ButtonLabel,
				Message:     args.Message,
				Schema:      tableSchema,
			})
			if err != nil {
				return "", fmt.Errorf("marshal form descriptor: %w", err)
			}
			return string(b), nil
		},
	}
}
