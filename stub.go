package latexenv

// EnvironmentStub is a summary of an environment, enough to index and look up
// environments without keeping the syntax tree around.
type EnvironmentStub struct {
	Name     string `msgpack:"name" yaml:"name"`
	Label    string `msgpack:"label,omitempty" yaml:"label,omitempty"`
	Language string `msgpack:"language,omitempty" yaml:"language,omitempty"`
	Start    int    `msgpack:"start" yaml:"start"`
	End      int    `msgpack:"end" yaml:"end"`
}
