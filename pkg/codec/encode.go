package codec

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/rhuss/anfrage/pkg/api"
	"github.com/rhuss/anfrage/pkg/chat"
)

// DefaultInstructions is substituted when a conversation carries no system
// message.
const DefaultInstructions = "You are a helpful assistant."

// deniedFallback is used for execution-denied tool results without a reason.
const deniedFallback = "Tool execution was denied."

// EncodedRequest holds the request body pieces produced from a conversation.
type EncodedRequest struct {
	Instructions string
	Input        []api.InputItem
	Tools        []api.ToolDefinition
	ToolChoice   any
	Warnings     []chat.Warning
}

// Encode converts a conversation and its generation options into the
// upstream request pieces. System content goes exclusively into
// Instructions; the input array never contains a system role.
func Encode(messages []chat.Message, opts chat.Options) (*EncodedRequest, error) {
	enc := &EncodedRequest{}

	var system []string
	for _, msg := range messages {
		switch msg.Role {
		case chat.RoleSystem:
			for _, part := range msg.Parts {
				if part.Type == chat.PartText {
					system = append(system, part.Text)
				}
			}

		case chat.RoleUser:
			item, err := encodeUserMessage(msg)
			if err != nil {
				return nil, err
			}
			enc.Input = append(enc.Input, item)

		case chat.RoleAssistant:
			enc.Input = append(enc.Input, encodeAssistantMessage(msg)...)

		case chat.RoleTool:
			for _, part := range msg.Parts {
				if part.Type != chat.PartToolResult || part.ToolResult == nil {
					continue
				}
				enc.Input = append(enc.Input, api.InputItem{
					Type:   api.ItemTypeFunctionCallOutput,
					CallID: part.ToolResult.CallID,
					Output: flattenToolResult(part.ToolResult),
				})
			}

		default:
			return nil, fmt.Errorf("codec: unsupported message role %q", msg.Role)
		}
	}

	enc.Instructions = strings.Join(system, "\n\n")
	if enc.Instructions == "" {
		enc.Instructions = DefaultInstructions
	}

	enc.Tools = encodeTools(opts.Tools)
	enc.ToolChoice = encodeToolChoice(opts.ToolChoice)
	enc.Warnings = collectWarnings(opts)

	return enc, nil
}

// encodeUserMessage builds one message input item from a user turn. Image
// files become input_image parts; other files are reduced to a text
// placeholder since the backend accepts no opaque binary payloads.
func encodeUserMessage(msg chat.Message) (api.InputItem, error) {
	item := api.InputItem{Type: api.ItemTypeMessage, Role: "user"}

	for _, part := range msg.Parts {
		switch part.Type {
		case chat.PartText:
			item.Content = append(item.Content, api.ContentPart{Type: "input_text", Text: part.Text})

		case chat.PartFile:
			if part.File == nil {
				continue
			}
			if part.File.IsImage() {
				url, err := imageURL(part.File)
				if err != nil {
					return item, err
				}
				item.Content = append(item.Content, api.ContentPart{Type: "input_image", ImageURL: url})
				continue
			}
			item.Content = append(item.Content, api.ContentPart{
				Type: "input_text",
				Text: fmt.Sprintf("[file omitted: %s]", part.File.MediaType),
			})

		default:
			return item, fmt.Errorf("codec: unsupported user part type %q", part.Type)
		}
	}

	return item, nil
}

// imageURL passes URL references through verbatim and re-encodes inline
// bytes or base64 text as a data URL.
func imageURL(f *chat.FilePart) (string, error) {
	switch {
	case f.URL != "":
		return f.URL, nil
	case len(f.Data) > 0:
		return fmt.Sprintf("data:%s;base64,%s", f.MediaType, base64.StdEncoding.EncodeToString(f.Data)), nil
	case f.Base64 != "":
		return fmt.Sprintf("data:%s;base64,%s", f.MediaType, f.Base64), nil
	default:
		return "", fmt.Errorf("codec: image part has no url, bytes, or base64 data")
	}
}

// encodeAssistantMessage replays an assistant turn: text and reasoning parts
// collapse into one output message item, tool calls follow as separate
// function_call items. Reasoning survives only as delimited plain text.
func encodeAssistantMessage(msg chat.Message) []api.InputItem {
	var items []api.InputItem
	message := api.InputItem{Type: api.ItemTypeMessage, Role: "assistant"}

	var calls []api.InputItem
	for _, part := range msg.Parts {
		switch part.Type {
		case chat.PartText:
			message.Content = append(message.Content, api.ContentPart{Type: "output_text", Text: part.Text})

		case chat.PartReasoning:
			message.Content = append(message.Content, api.ContentPart{
				Type: "output_text",
				Text: "<reasoning>" + part.Text + "</reasoning>",
			})

		case chat.PartToolCall:
			if part.ToolCall == nil {
				continue
			}
			callID := part.ToolCall.ID
			if callID == "" {
				callID = api.NewCallID()
			}
			calls = append(calls, api.InputItem{
				Type:      api.ItemTypeFunctionCall,
				CallID:    callID,
				Name:      part.ToolCall.Name,
				Arguments: part.ToolCall.Input,
			})

			// file and tool-result parts are not valid assistant output here.
		}
	}

	if len(message.Content) > 0 {
		items = append(items, message)
	}
	return append(items, calls...)
}

// flattenToolResult reduces a tool result payload to the single output
// string the wire format requires.
func flattenToolResult(result *chat.ToolResultPart) string {
	switch result.Kind {
	case chat.ResultText, chat.ResultErrorText:
		return result.Text

	case chat.ResultJSON, chat.ResultErrorJSON:
		return string(result.Value)

	case chat.ResultExecutionDenied:
		if result.Text != "" {
			return result.Text
		}
		return deniedFallback

	case chat.ResultContent:
		var texts []string
		for _, sub := range result.Content {
			if sub.Type == "text" {
				texts = append(texts, sub.Text)
			}
		}
		return strings.Join(texts, "\n")

	default:
		return ""
	}
}

// encodeTools keeps function tools and silently drops provider-specific
// kinds the backend cannot execute.
func encodeTools(tools []chat.Tool) []api.ToolDefinition {
	var defs []api.ToolDefinition
	for _, tool := range tools {
		if tool.Type != "function" {
			continue
		}
		defs = append(defs, api.ToolDefinition{
			Type:        "function",
			Name:        tool.Name,
			Description: tool.Description,
			Parameters:  tool.InputSchema,
			Strict:      false,
		})
	}
	return defs
}

func encodeToolChoice(choice *chat.ToolChoice) any {
	if choice == nil {
		return nil
	}
	switch choice.Kind {
	case chat.ToolChoiceAuto:
		return "auto"
	case chat.ToolChoiceNone:
		return "none"
	case chat.ToolChoiceRequired:
		return "required"
	case chat.ToolChoiceTool:
		return api.NewToolChoiceFunction(choice.Name)
	default:
		return nil
	}
}

func collectWarnings(opts chat.Options) []chat.Warning {
	var warnings []chat.Warning
	if opts.TopK != nil {
		warnings = append(warnings, chat.Warning{
			Feature: "topK",
			Message: "top-k sampling is not supported by the backend and was ignored",
		})
	}
	if opts.ResponseFormat != nil && opts.ResponseFormat.Type == "json" {
		warnings = append(warnings, chat.Warning{
			Feature: "responseFormat",
			Message: "structured JSON response format is not supported by the backend and was ignored",
		})
	}
	return warnings
}
