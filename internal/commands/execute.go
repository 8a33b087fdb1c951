package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Add      func(AddArgs) (Result, error)
	Done     func(DoneArgs) (Result, error)
	Alarm    func(AlarmArgs) (Result, error)
	Recur    func(RecurArgs) (Result, error)
	Upcoming func(UpcomingArgs) (Result, error)
	Export   func(ExportArgs) (Result, error)
	Import   func(ImportArgs) (Result, error)
	Show     func(ShowArgs) (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAdd:
		if handlers.Add == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "add handler not configured"}
		}
		return handlers.Add(*cmd.Add)
	case TypeDone:
		if handlers.Done == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "done handler not configured"}
		}
		return handlers.Done(*cmd.Done)
	case TypeAlarm:
		if handlers.Alarm == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "alarm handler not configured"}
		}
		return handlers.Alarm(*cmd.Alarm)
	case TypeRecur:
		if handlers.Recur == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "recur handler not configured"}
		}
		return handlers.Recur(*cmd.Recur)
	case TypeUpcoming:
		if handlers.Upcoming == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "upcoming handler not configured"}
		}
		return handlers.Upcoming(*cmd.Upcoming)
	case TypeExport:
		if handlers.Export == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "export handler not configured"}
		}
		return handlers.Export(*cmd.Export)
	case TypeImport:
		if handlers.Import == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "import handler not configured"}
		}
		return handlers.Import(*cmd.Import)
	case TypeShow:
		if handlers.Show == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "show handler not configured"}
		}
		return handlers.Show(*cmd.Show)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}
