package commands

import "fmt"

type Result struct {
	Message string
}

// Handlers binds each command type to the TUI action that performs it. Done
// and undo share Mark.
type Handlers struct {
	Date    func(DateArgs) (Result, error)
	Channel func(ChannelArgs) (Result, error)
	Mark    func(MarkArgs) (Result, error)
	Refresh func() (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeDate:
		if handlers.Date == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "date handler not configured"}
		}
		return handlers.Date(*cmd.Date)
	case TypeChannel:
		if handlers.Channel == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "channel handler not configured"}
		}
		return handlers.Channel(*cmd.Channel)
	case TypeDone, TypeUndo:
		if handlers.Mark == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", cmd.Type)}
		}
		return handlers.Mark(*cmd.Mark)
	case TypeRefresh:
		if handlers.Refresh == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "refresh handler not configured"}
		}
		return handlers.Refresh()
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}
