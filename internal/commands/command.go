package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/grantcko/workout-heatmap/internal/model"
)

type Type string

const (
	TypeDate    Type = "date"
	TypeChannel Type = "channel"
	TypeDone    Type = "done"
	TypeUndo    Type = "undo"
	TypeRefresh Type = "refresh"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// DateArgs names an absolute date or, when Offset is set, a shift in days
// from the date currently shown.
type DateArgs struct {
	Date   string
	Offset int
	Today  bool
}

type ChannelArgs struct {
	Channel model.Channel
}

// MarkArgs addresses a checklist row by its 1-based position.
type MarkArgs struct {
	Index     int
	Completed bool
}

type Command struct {
	Type    Type
	Raw     string
	Date    *DateArgs
	Channel *ChannelArgs
	Mark    *MarkArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeDate:
		return parseDate(input, args)
	case TypeChannel:
		return parseChannel(input, args)
	case TypeDone:
		return parseMark(input, TypeDone, args, true)
	case TypeUndo:
		return parseMark(input, TypeUndo, args, false)
	case TypeRefresh:
		return Command{Type: TypeRefresh, Raw: input}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseDate(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "date requires YYYY-MM-DD, today, or +N/-N"}
	}
	arg := strings.ToLower(args[0])
	if arg == "today" {
		return Command{Type: TypeDate, Raw: raw, Date: &DateArgs{Today: true}}, nil
	}
	if strings.HasPrefix(arg, "+") || strings.HasPrefix(arg, "-") {
		n, err := strconv.Atoi(arg)
		if err != nil || n == 0 {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("invalid day offset: %s", arg)}
		}
		return Command{Type: TypeDate, Raw: raw, Date: &DateArgs{Offset: n}}, nil
	}
	if err := model.ValidateDate(arg); err != nil {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("invalid date: %s", arg)}
	}
	return Command{Type: TypeDate, Raw: raw, Date: &DateArgs{Date: arg}}, nil
}

func parseChannel(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "channel requires workout or mobility"}
	}
	ch := model.Channel(strings.ToLower(args[0]))
	if !ch.IsValid() {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown channel: %s", args[0])}
	}
	return Command{Type: TypeChannel, Raw: raw, Channel: &ChannelArgs{Channel: ch}}, nil
}

func parseMark(raw string, typ Type, args []string, completed bool) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s requires an item number", typ)}
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("invalid item number: %s", args[0])}
	}
	return Command{Type: typ, Raw: raw, Mark: &MarkArgs{Index: n, Completed: completed}}, nil
}
