package cli

import "fmt"

// legacyFlags maps the switches of the original Windows tool
// (WREXPT [/f:dbfile] [/p:password] [/o:outfile]) to long flags. Letters are
// case-sensitive: "/F:" is an unknown switch, as it always was.
var legacyFlags = map[byte]string{
	'f': "file",
	'p': "password",
	'o': "output",
}

// RewriteLegacyArgs turns "/f:path", "/p:pw" and "/o:path" into their long
// flag equivalents. Other arguments pass through untouched. A legacy switch
// with an empty value or an unknown letter is an error, as it was for the
// original tool.
func RewriteLegacyArgs(args []string) ([]string, error) {
	out := make([]string, 0, len(args))
	for _, arg := range args {
		if !isLegacySwitch(arg) {
			out = append(out, arg)
			continue
		}

		name, ok := legacyFlags[arg[1]]
		if !ok {
			return nil, fmt.Errorf("unknown switch %q", arg[:3])
		}
		if len(arg) < 4 {
			return nil, fmt.Errorf("switch %q needs a value", arg)
		}
		out = append(out, "--"+name+"="+arg[3:])
	}
	return out, nil
}

// isLegacySwitch matches "/x:..." with a single ASCII letter x.
func isLegacySwitch(arg string) bool {
	if len(arg) < 3 || arg[0] != '/' || arg[2] != ':' {
		return false
	}
	c := arg[1]
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
