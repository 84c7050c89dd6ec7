package apps

// ArgumentError reports an invalid command-line argument or setting.
type ArgumentError struct {
	Arg string
	Msg string
}

func NewArgumentError(arg, msg string) *ArgumentError {
	return &ArgumentError{Arg: arg, Msg: msg}
}

func (err *ArgumentError) Error() string {
	return err.Arg + ": " + err.Msg
}
