package latexenv

// isRaw returns true for environments whose body is not LaTeX and is read verbatim until the matching \end
func isRaw(name string) bool {
	switch name {
	case "verbatim", "verbatim*", "Verbatim", "lstlisting", "minted", "comment", "luacode", "luacode*", "pycode", "pyblock", "sagesilent", "sageblock", "asy", "gnuplot":
		return true
	default:
		return false
	}
}

// rawParameters returns brackets of parameters a verbatim-like environment
// takes after \begin, in order. Anything else is already part of the body.
func rawParameters(name string) string {
	switch name {
	case "lstlisting", "Verbatim":
		return "["
	case "minted":
		return "[{"
	default:
		return ""
	}
}

// language returns language which is implied by environment name
func language(name string) string {
	switch name {
	case "luacode", "luacode*":
		return "lua"
	case "pycode", "pyblock":
		return "python"
	case "sagesilent", "sageblock":
		return "sage"
	case "asy":
		return "asymptote"
	case "gnuplot":
		return "gnuplot"
	default:
		return ""
	}
}

// labelAsOption returns true for environments which take label as an option, for example \begin{lstlisting}[label=lst:1]
func labelAsOption(name string) bool {
	switch name {
	case "lstlisting", "Verbatim", "minted":
		return true
	default:
		return false
	}
}
