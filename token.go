package latexenv

type Text string
type Command string
type Comment string

type Math struct {
	Delimiter string
	Data      string
	Closed    bool
}

type Verb struct {
	Command   string
	Delimiter string
	Data      string
	Closed    bool
}

type ParameterStart struct {
}

type ParameterEnd struct {
}

type OptionalStart struct {
}

type OptionalEnd struct {
}

// EnvironmentStart is \begin{Name}. Name is empty when the argument is missing or malformed.
type EnvironmentStart struct {
	Name string
}

// EnvironmentEnd is \end{Name}. Name is empty when the argument is missing or malformed.
type EnvironmentEnd struct {
	Name string
}
