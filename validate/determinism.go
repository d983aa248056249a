package validate

import "bytes"

// CheckDeterminism verifies that running a stage twice on
// byte-identical inputs produces byte-identical outputs. The
// caller runs the stage twice (e.g. two calls to nbg.Build / ebg.Build
// / order.BuildPhysical / contract.Build / customize.Build followed by their
// codec Write) and passes the two encoded artifacts here; this package
// only does the comparison since round-tripping a whole stage is the
// caller's concern, not validate's.
func CheckDeterminism(first, second []byte, label string) *Result {
	r := &Result{}
	if bytes.Equal(first, second) {
		r.pass()
	} else {
		r.fail("%s output is not byte-identical across repeated runs", label)
	}
	return r
}
