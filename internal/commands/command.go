package commands

import (
	"fmt"
	"strconv"
	"strings"
)

type Type string

const (
	TypeAdd      Type = "add"
	TypeDone     Type = "done"
	TypeAlarm    Type = "alarm"
	TypeRecur    Type = "recur"
	TypeUpcoming Type = "upcoming"
	TypeExport   Type = "export"
	TypeImport   Type = "import"
	TypeShow     Type = "show"
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

type AddArgs struct {
	Title string
}

type DoneArgs struct {
	Target string
}

type AlarmArgs struct {
	Target string
	When   string
	Clear  bool
}

type RecurArgs struct {
	Target string
	Rule   string
}

type UpcomingArgs struct {
	Days int
}

type ExportArgs struct {
	Format string
	Path   string
}

type ImportArgs struct {
	Path string
}

type ShowArgs struct {
	Subject string
	Tag     string
}

type Command struct {
	Type     Type
	Raw      string
	Add      *AddArgs
	Done     *DoneArgs
	Alarm    *AlarmArgs
	Recur    *RecurArgs
	Upcoming *UpcomingArgs
	Export   *ExportArgs
	Import   *ImportArgs
	Show     *ShowArgs
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
	case TypeAdd:
		return parseAdd(input, args)
	case TypeDone:
		return parseDone(input, args)
	case TypeAlarm:
		return parseAlarm(input, args)
	case TypeRecur:
		return parseRecur(input, args)
	case TypeUpcoming:
		return parseUpcoming(input, args)
	case TypeExport:
		return parseExport(input, args)
	case TypeImport:
		return parseImport(input, args)
	case TypeShow:
		return parseShow(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseAdd(raw string, args []string) (Command, error) {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a title"}
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &AddArgs{Title: title}}, nil
}

func parseDone(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "done requires a task id"}
	}
	return Command{Type: TypeDone, Raw: raw, Done: &DoneArgs{Target: args[0]}}, nil
}

func parseAlarm(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "alarm requires a task id and a time (or 'clear')"}
	}
	target := args[0]
	rest := strings.Join(args[1:], " ")
	if strings.EqualFold(rest, "clear") {
		return Command{Type: TypeAlarm, Raw: raw, Alarm: &AlarmArgs{Target: target, Clear: true}}, nil
	}
	return Command{Type: TypeAlarm, Raw: raw, Alarm: &AlarmArgs{Target: target, When: rest}}, nil
}

func parseRecur(raw string, args []string) (Command, error) {
	if len(args) != 2 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "recur requires a task id and a rule"}
	}
	return Command{Type: TypeRecur, Raw: raw, Recur: &RecurArgs{Target: args[0], Rule: strings.ToLower(args[1])}}, nil
}

func parseUpcoming(raw string, args []string) (Command, error) {
	days := 0
	if len(args) > 0 {
		parsed, err := strconv.Atoi(args[0])
		if err != nil || parsed <= 0 {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "upcoming takes an optional positive day count"}
		}
		days = parsed
	}
	return Command{Type: TypeUpcoming, Raw: raw, Upcoming: &UpcomingArgs{Days: days}}, nil
}

func parseExport(raw string, args []string) (Command, error) {
	if len(args) != 2 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "export requires a format (json|csv) and a path"}
	}
	format := strings.ToLower(args[0])
	if format != "json" && format != "csv" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unsupported export format: %s", format)}
	}
	return Command{Type: TypeExport, Raw: raw, Export: &ExportArgs{Format: format, Path: args[1]}}, nil
}

func parseImport(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "import requires a path"}
	}
	return Command{Type: TypeImport, Raw: raw, Import: &ImportArgs{Path: args[0]}}, nil
}

func parseShow(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "show requires a subject"}
	}
	subject := strings.ToLower(args[0])
	tag := ""
	for _, arg := range args[1:] {
		if strings.HasPrefix(strings.ToLower(arg), "tag:") {
			tag = strings.TrimSpace(strings.TrimPrefix(arg, "tag:"))
		}
	}
	return Command{Type: TypeShow, Raw: raw, Show: &ShowArgs{Subject: subject, Tag: tag}}, nil
}
