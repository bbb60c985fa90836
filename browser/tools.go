// Browser capabilities exposed as agent tools.
//
// Each tool is a thin argument-parsing shim over the Controller: failures
// become tool results the planner can react to, never hard errors.

package browser

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rabbitlabs/rabbit/tools"
)

// NavigateTool loads a URL in the shared session.
type NavigateTool struct {
	controller *Controller
}

func (t *NavigateTool) Metadata() tools.ToolMetadata {
	return tools.ToolMetadata{
		Name:        "navigate",
		Description: "Navigate the browser to a URL and wait for the page to load",
		Parameters: []tools.ToolParameter{
			{Name: "url", Type: tools.ParamString, Description: "Absolute URL to load", Required: true},
		},
	}
}

func (t *NavigateTool) Execute(ctx context.Context, args json.RawMessage) (tools.ToolResult, error) {
	var input struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(args, &input); err != nil {
		return tools.FailureResultf("invalid arguments: %v", err), nil
	}
	if err := t.controller.Navigate(ctx, input.URL); err != nil {
		return tools.FailureResult(err), nil
	}
	return tools.SuccessResult(fmt.Sprintf("Loaded %s", input.URL)), nil
}

// ExtractTextTool reads visible text from the current page.
type ExtractTextTool struct {
	controller *Controller
}

func (t *ExtractTextTool) Metadata() tools.ToolMetadata {
	return tools.ToolMetadata{
		Name:        "extract_text",
		Description: "Extract visible text from the current page, optionally scoped to a CSS selector",
		Parameters: []tools.ToolParameter{
			{Name: "selector", Type: tools.ParamString, Description: "CSS selector to scope extraction; whole page when omitted", Required: false},
		},
	}
}

func (t *ExtractTextTool) Execute(ctx context.Context, args json.RawMessage) (tools.ToolResult, error) {
	var input struct {
		Selector string `json:"selector"`
	}
	if err := json.Unmarshal(args, &input); err != nil {
		return tools.FailureResultf("invalid arguments: %v", err), nil
	}
	text, err := t.controller.ExtractText(ctx, input.Selector)
	if err != nil {
		return tools.FailureResult(err), nil
	}
	if text == "" {
		return tools.FailureResultf("no text found for selector %q", input.Selector), nil
	}
	return tools.SuccessResult(text), nil
}

// ClickTool clicks an element.
type ClickTool struct {
	controller *Controller
}

func (t *ClickTool) Metadata() tools.ToolMetadata {
	return tools.ToolMetadata{
		Name:        "click",
		Description: "Click the first element matching a CSS selector",
		Parameters: []tools.ToolParameter{
			{Name: "selector", Type: tools.ParamString, Description: "CSS selector of the element to click", Required: true},
		},
	}
}

func (t *ClickTool) Execute(ctx context.Context, args json.RawMessage) (tools.ToolResult, error) {
	var input struct {
		Selector string `json:"selector"`
	}
	if err := json.Unmarshal(args, &input); err != nil {
		return tools.FailureResultf("invalid arguments: %v", err), nil
	}
	if err := t.controller.Click(ctx, input.Selector); err != nil {
		return tools.FailureResult(err), nil
	}
	return tools.SuccessResult(fmt.Sprintf("Clicked %s", input.Selector)), nil
}

// FillFormTool types a value into an input field.
type FillFormTool struct {
	controller *Controller
}

func (t *FillFormTool) Metadata() tools.ToolMetadata {
	return tools.ToolMetadata{
		Name:        "fill_form",
		Description: "Clear an input field and type a value into it",
		Parameters: []tools.ToolParameter{
			{Name: "selector", Type: tools.ParamString, Description: "CSS selector of the input", Required: true},
			{Name: "value", Type: tools.ParamString, Description: "Text to type", Required: true},
			{Name: "submit", Type: tools.ParamBoolean, Description: "Press Enter after typing", Required: false},
		},
	}
}

func (t *FillFormTool) Execute(ctx context.Context, args json.RawMessage) (tools.ToolResult, error) {
	var input struct {
		Selector string `json:"selector"`
		Value    string `json:"value"`
		Submit   bool   `json:"submit"`
	}
	if err := json.Unmarshal(args, &input); err != nil {
		return tools.FailureResultf("invalid arguments: %v", err), nil
	}
	if err := t.controller.Fill(ctx, input.Selector, input.Value, input.Submit); err != nil {
		return tools.FailureResult(err), nil
	}
	return tools.SuccessResult(fmt.Sprintf("Filled %s", input.Selector)), nil
}

// PageTitleTool reads the current page title.
type PageTitleTool struct {
	controller *Controller
}

func (t *PageTitleTool) Metadata() tools.ToolMetadata {
	return tools.ToolMetadata{
		Name:        "page_title",
		Description: "Get the title of the current page",
	}
}

func (t *PageTitleTool) Execute(ctx context.Context, _ json.RawMessage) (tools.ToolResult, error) {
	title, err := t.controller.Title(ctx)
	if err != nil {
		return tools.FailureResult(err), nil
	}
	return tools.SuccessResult(title), nil
}

// CurrentURLTool reads the current page location.
type CurrentURLTool struct {
	controller *Controller
}

func (t *CurrentURLTool) Metadata() tools.ToolMetadata {
	return tools.ToolMetadata{
		Name:        "current_url",
		Description: "Get the URL of the current page",
	}
}

func (t *CurrentURLTool) Execute(ctx context.Context, _ json.RawMessage) (tools.ToolResult, error) {
	url, err := t.controller.CurrentURL(ctx)
	if err != nil {
		return tools.FailureResult(err), nil
	}
	return tools.SuccessResult(url), nil
}

// ScrollTool scrolls the page.
type ScrollTool struct {
	controller *Controller
}

func (t *ScrollTool) Metadata() tools.ToolMetadata {
	return tools.ToolMetadata{
		Name:        "scroll",
		Description: "Scroll the page vertically to reveal more content",
		Parameters: []tools.ToolParameter{
			{Name: "pixels", Type: tools.ParamNumber, Description: "Pixels to scroll; negative scrolls up, default 500", Required: false},
		},
	}
}

func (t *ScrollTool) Execute(ctx context.Context, args json.RawMessage) (tools.ToolResult, error) {
	var input struct {
		Pixels int `json:"pixels"`
	}
	if err := json.Unmarshal(args, &input); err != nil {
		return tools.FailureResultf("invalid arguments: %v", err), nil
	}
	if err := t.controller.Scroll(ctx, input.Pixels); err != nil {
		return tools.FailureResult(err), nil
	}
	return tools.SuccessResult("Scrolled"), nil
}

// WaitForElementTool blocks until an element appears.
type WaitForElementTool struct {
	controller *Controller
}

func (t *WaitForElementTool) Metadata() tools.ToolMetadata {
	return tools.ToolMetadata{
		Name:        "wait_for_element",
		Description: "Wait until an element matching a CSS selector becomes visible",
		Parameters: []tools.ToolParameter{
			{Name: "selector", Type: tools.ParamString, Description: "CSS selector to wait for", Required: true},
		},
	}
}

func (t *WaitForElementTool) Execute(ctx context.Context, args json.RawMessage) (tools.ToolResult, error) {
	var input struct {
		Selector string `json:"selector"`
	}
	if err := json.Unmarshal(args, &input); err != nil {
		return tools.FailureResultf("invalid arguments: %v", err), nil
	}
	if err := t.controller.WaitVisible(ctx, input.Selector); err != nil {
		return tools.FailureResult(err), nil
	}
	return tools.SuccessResult(fmt.Sprintf("Element %s is visible", input.Selector)), nil
}

// ScreenshotTool captures the page to a file.
type ScreenshotTool struct {
	controller *Controller
}

func (t *ScreenshotTool) Metadata() tools.ToolMetadata {
	return tools.ToolMetadata{
		Name:        "screenshot",
		Description: "Capture a full-page screenshot and save it as PNG",
		Parameters: []tools.ToolParameter{
			{Name: "path", Type: tools.ParamString, Description: "File path to write the PNG to", Required: true},
		},
	}
}

func (t *ScreenshotTool) Execute(ctx context.Context, args json.RawMessage) (tools.ToolResult, error) {
	var input struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal(args, &input); err != nil {
		return tools.FailureResultf("invalid arguments: %v", err), nil
	}
	if err := t.controller.Screenshot(ctx, input.Path); err != nil {
		return tools.FailureResult(err), nil
	}
	return tools.SuccessResult(fmt.Sprintf("Screenshot saved to %s", input.Path)), nil
}

// ExecuteJSTool runs JavaScript on the current page.
type ExecuteJSTool struct {
	controller *Controller
}

func (t *ExecuteJSTool) Metadata() tools.ToolMetadata {
	return tools.ToolMetadata{
		Name:        "execute_js",
		Description: "Execute JavaScript on the current page and return the result",
		Parameters: []tools.ToolParameter{
			{Name: "script", Type: tools.ParamString, Description: "JavaScript expression to evaluate", Required: true},
		},
	}
}

func (t *ExecuteJSTool) Execute(ctx context.Context, args json.RawMessage) (tools.ToolResult, error) {
	var input struct {
		Script string `json:"script"`
	}
	if err := json.Unmarshal(args, &input); err != nil {
		return tools.FailureResultf("invalid arguments: %v", err), nil
	}
	result, err := t.controller.EvaluateJS(ctx, input.Script)
	if err != nil {
		return tools.FailureResult(err), nil
	}
	return tools.SuccessResult(result), nil
}

// WithBrowserTools registers the full browser toolset backed by the given
// controller.
func WithBrowserTools(registry *tools.Registry, controller *Controller) error {
	all := []tools.Tool{
		&NavigateTool{controller: controller},
		&ExtractTextTool{controller: controller},
		&ClickTool{controller: controller},
		&FillFormTool{controller: controller},
		&PageTitleTool{controller: controller},
		&CurrentURLTool{controller: controller},
		&ScrollTool{controller: controller},
		&WaitForElementTool{controller: controller},
		&ScreenshotTool{controller: controller},
		&ExecuteJSTool{controller: controller},
	}
	for _, tool := range all {
		if err := registry.Register(tool); err != nil {
			return err
		}
	}
	return nil
}
