package anchorsvc

import (
	"strings"
	"time"

	"github.com/google/cel-go/cel"
)

// celFilter wraps a compiled CEL program evaluated per record during
// subscription. When disabled, Eval always returns true.
//
// Exposed variables mirror the record stream's lookup keys: consumers
// typically filter on a known submitter, and may combine chain_tag,
// per-field hex values, position, and time.
type celFilter struct {
	prog    cel.Program
	enabled bool
}

func newCELFilter(expr string) (celFilter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return celFilter{enabled: false}, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("submitter", cel.StringType),
		cel.Variable("chain_tag", cel.StringType),
		cel.Variable("batch_id", cel.StringType),
		cel.Variable("merkle_root", cel.StringType),
		cel.Variable("note", cel.StringType),
		cel.Variable("note_size", cel.IntType),
		cel.Variable("seq", cel.IntType),
		cel.Variable("ts", cel.IntType),
		cel.Variable("now", cel.IntType),
	)
	if err != nil {
		return celFilter{}, err
	}
	ast, iss := env.Parse(expr)
	if iss != nil && iss.Err() != nil {
		return celFilter{}, iss.Err()
	}
	checked, iss2 := env.Check(ast)
	if iss2 != nil && iss2.Err() != nil {
		return celFilter{}, iss2.Err()
	}
	prog, err := env.Program(checked)
	if err != nil {
		return celFilter{}, err
	}
	return celFilter{prog: prog, enabled: true}, nil
}

// CompileFilter reports whether expr is a valid subscription filter so
// transports can reject a bad expression before committing to a stream
// response. An empty expression is valid (filtering disabled).
func CompileFilter(expr string) error {
	_, err := newCELFilter(expr)
	return err
}

// Eval evaluates the compiled expression against a stored record. Hex
// values are lowercase 0x-prefixed so string comparison works as expected.
func (f celFilter) Eval(rec StoredRecord) bool {
	if !f.enabled {
		return true
	}
	out, _, err := f.prog.Eval(map[string]any{
		"submitter":   strings.ToLower(rec.Record.Submitter.Hex()),
		"chain_tag":   rec.Record.ChainTag,
		"batch_id":    rec.Record.BatchIDHash.Hex(),
		"merkle_root": rec.Record.MerkleRoot.Hex(),
		"note":        rec.Record.Note,
		"note_size":   int64(len(rec.Record.Note)),
		"seq":         int64(rec.Seq),
		"ts":          int64(rec.Record.Timestamp),
		"now":         time.Now().Unix(),
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}
