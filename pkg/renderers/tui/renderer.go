package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	"github.com/supersafe-org/go-safe-apps/pkg/model"
	"github.com/supersafe-org/go-safe-apps/pkg/uischema"
)

// DateLayout is the format accepted by date picker prompts.
const DateLayout = "2006-01-02"

// Renderer walks a merged instruction in a terminal session and fills the
// data value of every element.
type Renderer struct {
	driver       PromptDriver
	outputFormat OutputFormat
	wallet       Wallet
}

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		driver:       newSurveyDriver(),
		outputFormat: OutputFormatJSON,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	switch r.outputFormat {
	case OutputFormatJSON, OutputFormatPrettyText:
	default:
		return nil, fmt.Errorf("tui: unsupported output format %q", r.outputFormat)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	if r.outputFormat == OutputFormatPrettyText {
		return "text/plain"
	}
	return "application/json"
}

// Render fills ix and serializes the result.
func (r *Renderer) Render(ctx context.Context, ix model.Instruction, prefill map[string]any) ([]byte, error) {
	filled, err := r.Fill(ctx, ix, prefill)
	if err != nil {
		return nil, err
	}
	if r.outputFormat == OutputFormatPrettyText {
		return []byte(prettyPrint(filled)), nil
	}
	out, err := json.MarshalIndent(filled, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("tui: encode instruction: %w", err)
	}
	return out, nil
}

// Fill prompts for every element of ix and returns a copy with data values
// set. Hidden elements take their prefilled or declared value without a
// prompt; read-only elements are shown and kept.
func (r *Renderer) Fill(ctx context.Context, ix model.Instruction, prefill map[string]any) (model.Instruction, error) {
	if ctx == nil {
		return model.Instruction{}, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return model.Instruction{}, err
	}
	if r.driver == nil {
		return model.Instruction{}, errors.New("tui: prompt driver is nil")
	}

	out := cloneInstruction(ix)
	state := NewState(prefill)

	if ix.Label != "" {
		if err := r.driver.Info(ctx, ix.Label); err != nil {
			return model.Instruction{}, err
		}
	}

	for i := range out.UIElements {
		el := &out.UIElements[i]
		value, err := r.resolve(ctx, *el, state)
		if err != nil {
			return model.Instruction{}, fmt.Errorf("tui: %s: %w", el.Name, err)
		}
		if value == nil {
			continue
		}
		state.Set(el.Name, value)
		if err := bind(el, value); err != nil {
			return model.Instruction{}, fmt.Errorf("tui: %s: %w", el.Name, err)
		}
	}
	return out, nil
}

func (r *Renderer) resolve(ctx context.Context, el model.UIElement, state *State) (any, error) {
	declared := el.Value
	if v, ok := state.Value(el.Name); ok {
		declared = v
	}

	switch el.Visibility.Normalize() {
	case uischema.VisibilityHide:
		return declared, nil
	case uischema.VisibilityReadOnly:
		if declared != nil {
			if err := r.driver.Info(ctx, fmt.Sprintf("%s: %v", displayLabel(el), declared)); err != nil {
				return nil, err
			}
		}
		return declared, nil
	}

	_, isAccount := el.DataElement.(*model.Account)

	switch {
	case el.Type.Token != nil:
		return r.promptAmount(ctx, el, state)
	case el.Type.Func != "":
		return r.promptText(ctx, el, state, isAccount)
	}

	switch el.Type.Kind {
	case uischema.KindTextInfo:
		msg := displayLabel(el)
		if el.Help != "" {
			msg += "\n" + el.Help
		}
		return declared, r.driver.Info(ctx, msg)
	case uischema.KindKnownValue:
		return declared, nil
	case uischema.KindYesOrNo:
		return r.promptBool(ctx, el, declared)
	case uischema.KindOption:
		return r.promptChoice(ctx, el, choicesFrom(el.Value), state)
	case uischema.KindOptionOwners:
		return r.promptChoiceOrText(ctx, el, r.wallet.Owners, state, isAccount)
	case uischema.KindOptionAccounts:
		return r.promptChoiceOrText(ctx, el, r.wallet.Accounts, state, isAccount)
	case uischema.KindTxProposer:
		return r.walletValue(ctx, el, r.wallet.Proposer, state)
	case uischema.KindMultisig:
		return r.walletValue(ctx, el, r.wallet.Multisig, state)
	case uischema.KindTreasuryAccount:
		return r.walletValue(ctx, el, r.wallet.Treasury, state)
	case uischema.KindInputNumber:
		return r.promptNumber(ctx, el, state)
	case uischema.KindDatePicker:
		return r.promptDate(ctx, el, state)
	case uischema.KindInputTextArea:
		return r.promptTextArea(ctx, el, state)
	default:
		return r.promptText(ctx, el, state, isAccount)
	}
}

func (r *Renderer) walletValue(ctx context.Context, el model.UIElement, known string, state *State) (any, error) {
	if known != "" {
		return known, nil
	}
	return r.promptText(ctx, el, state, true)
}

func (r *Renderer) promptText(ctx context.Context, el model.UIElement, state *State, publicKey bool) (any, error) {
	for {
		input, err := r.driver.Input(ctx, InputConfig{
			Message: displayLabel(el),
			Default: state.Default(el.Name),
			Help:    el.Help,
		})
		if err != nil {
			return nil, err
		}
		input = strings.TrimSpace(input)
		if publicKey {
			if _, err := solana.PublicKeyFromBase58(input); err != nil {
				_ = r.driver.Info(ctx, fmt.Sprintf("Invalid %s: not a public key", el.Name))
				continue
			}
		}
		return input, nil
	}
}

func (r *Renderer) promptTextArea(ctx context.Context, el model.UIElement, state *State) (any, error) {
	return r.driver.TextArea(ctx, TextAreaConfig{
		Message: displayLabel(el),
		Default: state.Default(el.Name),
		Help:    el.Help,
	})
}

func (r *Renderer) promptBool(ctx context.Context, el model.UIElement, declared any) (any, error) {
	def, _ := declared.(bool)
	return r.driver.Confirm(ctx, ConfirmConfig{
		Message: displayLabel(el),
		Default: def,
		Help:    el.Help,
	})
}

func (r *Renderer) promptNumber(ctx context.Context, el model.UIElement, state *State) (any, error) {
	for {
		input, err := r.driver.Input(ctx, InputConfig{
			Message: displayLabel(el),
			Default: state.Default(el.Name),
			Help:    el.Help,
		})
		if err != nil {
			return nil, err
		}
		n, err := decimal.NewFromString(strings.TrimSpace(input))
		if err != nil {
			_ = r.driver.Info(ctx, fmt.Sprintf("Invalid %s: %v", el.Name, err))
			continue
		}
		return n.String(), nil
	}
}

// promptAmount reads a token amount in UI units. Scaling to base units
// needs the mint decimals and is left to the transaction builder.
func (r *Renderer) promptAmount(ctx context.Context, el model.UIElement, state *State) (any, error) {
	for {
		input, err := r.driver.Input(ctx, InputConfig{
			Message: displayLabel(el),
			Default: state.Default(el.Name),
			Help:    el.Help,
		})
		if err != nil {
			return nil, err
		}
		n, err := decimal.NewFromString(strings.TrimSpace(input))
		if err != nil || n.Sign() <= 0 {
			_ = r.driver.Info(ctx, fmt.Sprintf("Invalid %s: amount must be a positive number", el.Name))
			continue
		}
		return n.String(), nil
	}
}

func (r *Renderer) promptDate(ctx context.Context, el model.UIElement, state *State) (any, error) {
	for {
		input, err := r.driver.Input(ctx, InputConfig{
			Message: displayLabel(el) + " (" + DateLayout + ")",
			Default: state.Default(el.Name),
			Help:    el.Help,
		})
		if err != nil {
			return nil, err
		}
		day, err := time.Parse(DateLayout, strings.TrimSpace(input))
		if err != nil {
			_ = r.driver.Info(ctx, fmt.Sprintf("Invalid %s: %v", el.Name, err))
			continue
		}
		return day.Unix(), nil
	}
}

func (r *Renderer) promptChoiceOrText(ctx context.Context, el model.UIElement, choices []Choice, state *State, publicKey bool) (any, error) {
	if len(choices) == 0 {
		return r.promptText(ctx, el, state, publicKey)
	}
	return r.promptChoice(ctx, el, choices, state)
}

func (r *Renderer) promptChoice(ctx context.Context, el model.UIElement, choices []Choice, state *State) (any, error) {
	if len(choices) == 0 {
		return nil, ErrNoChoices
	}
	labels := make([]string, len(choices))
	defaultIdx := -1
	current := state.Default(el.Name)
	for i, c := range choices {
		labels[i] = c.Label
		if c.Value == current {
			defaultIdx = i
		}
	}
	for {
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      displayLabel(el),
			Options:      labels,
			DefaultIndex: defaultIdx,
			Help:         el.Help,
		})
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(choices) {
			_ = r.driver.Info(ctx, fmt.Sprintf("Invalid %s selection", el.Name))
			continue
		}
		return choices[idx].Value, nil
	}
}

// choicesFrom reads the options declared on an option widget: a list of
// strings or of {label, value} objects.
func choicesFrom(value any) []Choice {
	items, ok := value.([]any)
	if !ok {
		return nil
	}
	out := make([]Choice, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			out = append(out, Choice{Label: v, Value: v})
		case map[string]any:
			c := Choice{Value: fmt.Sprint(v["value"])}
			if label, ok := v["label"].(string); ok && label != "" {
				c.Label = label
			} else {
				c.Label = c.Value
			}
			out = append(out, c)
		default:
			s := fmt.Sprint(v)
			out = append(out, Choice{Label: s, Value: s})
		}
	}
	return out
}

func bind(el *model.UIElement, value any) error {
	switch data := el.DataElement.(type) {
	case *model.Account:
		key, ok := value.(string)
		if !ok {
			return fmt.Errorf("account value must be a public key, got %T", value)
		}
		if _, err := solana.PublicKeyFromBase58(key); err != nil {
			return fmt.Errorf("account value %q is not a public key", key)
		}
		data.DataValue = key
	case *model.Arg:
		data.DataValue = value
	default:
		el.Value = value
	}
	return nil
}

func cloneInstruction(ix model.Instruction) model.Instruction {
	out := ix
	out.UIElements = make([]model.UIElement, len(ix.UIElements))
	for i, el := range ix.UIElements {
		switch data := el.DataElement.(type) {
		case *model.Account:
			cp := *data
			el.DataElement = &cp
		case *model.Arg:
			cp := *data
			el.DataElement = &cp
		}
		out.UIElements[i] = el
	}
	return out
}

func displayLabel(el model.UIElement) string {
	if el.Label != "" {
		return el.Label
	}
	return el.Name
}

func prettyPrint(ix model.Instruction) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", ix.Name)
	for _, el := range ix.UIElements {
		var value any
		switch data := el.DataElement.(type) {
		case *model.Account:
			value = data.DataValue
		case *model.Arg:
			value = data.DataValue
		default:
			value = el.Value
		}
		if value == nil {
			continue
		}
		fmt.Fprintf(&b, "  %s = %v\n", el.Name, value)
	}
	return b.String()
}
