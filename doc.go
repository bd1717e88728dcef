// Package shapeinfer infers a compact, machine-checkable structural
// schema from heterogeneous JSON samples and lowers it to a closed
// algebraic intermediate representation, Ty, that downstream emitters
// turn into a JSON-Schema-like document or strict Go deserializers.
//
// The samples this package is built for are often obfuscated: positional
// arrays with null padding standing in for optional trailing fields,
// mixed numeric kinds, heterogeneous arrays that are sometimes lists and
// sometimes fixed-arity tuples. Rather than guess at a single shape per
// node, the core accumulates evidence across every sample before
// deciding anything.
//
// # Design Principles
//
//  1. Evidence before decisions: every JSON value observed contributes to
//     a bounded-size summary, U. No shape decision (integer vs number,
//     enum vs pattern, list vs tuple, required vs optional) is made until
//     every sample has been folded in.
//
//  2. Union semantics: combining two summaries (Join) is commutative,
//     associative, and idempotent. Samples can be observed in any order,
//     sharded across workers, and folded back together, and the result
//     never depends on how the work was split.
//
//  3. One decision per node: Normalize applies centralized, overridable
//     policy thresholds exactly once per position, producing a single
//     deterministic shape. This package does not emit probabilistic or
//     multi-hypothesis schemas.
//
//  4. Fail closed downstream, not here: the core itself never rejects an
//     input shape. Strictness (unknown-field rejection, fixed arity,
//     bounds-checked numerics) lives entirely in what codegen generates,
//     not in inference.
//
// # Pipeline
//
// [Observe] maps one JSON value to a [U]. [Join] combines two [U] values.
// [Normalize] applies policy to decide integer-vs-number, enum-vs-pattern,
// list-vs-tuple, and required-vs-optional. [Lower] converts a normalized
// [U] into a [Ty]. [Generator.Infer] runs this pipeline over many samples
// at once and applies any configured [Hint] overrides afterward.
//
// The core is single-threaded and synchronous; see package discover for
// a concurrent sharded driver that exploits Join's algebraic properties
// to fold large corpora in parallel.
package shapeinfer
