// Package harness runs booking scenarios against the wizard model.
//
// A scenario names a raw form record, a fixed "now" and a flow of user
// actions. Each action is applied to the wizard in order; optional expect
// clauses check the phase, the validation error and the effects after that
// step, and assertions check the end state.
//
// # Scenario Format
//
//	name: book_cut
//	description: "Customer books a cut with the default option"
//	now: "2026-10-14T10:15:00+09:00"
//	availability: always
//	record_file: ../records/salon.json
//	flow:
//	  - action: set_name
//	    value: 山田 花子
//	  - action: select_menu
//	    id: menu-cut
//	    expect:
//	      phase: menu_chosen
//	  - action: submit
//	    expect:
//	      error: ""
//	      effects: [webhook]
//	assertions:
//	  - type: final_phase
//	    phase: submitting
//	  - type: totals
//	    price: 5500
//
// A record may also be given inline under record:.
//
// # Assertion Types
//
//   - final_phase: the last phase equals phase
//   - final_state: the final state contains expect (subset match on its JSON)
//   - summary_contains: the summary lists key, with value when given
//   - totals: price and/or duration of the selection
//   - effect_count: effects of kind were requested exactly count times
//   - payload_valid: the submitted payload matches the webhook schema
//   - confirmation_contains: the confirmation text contains value
//
// # Deterministic Testing
//
// The wizard runs on a testutil.FixedClock set to the scenario's now, and
// availability is either every slot or the deterministic placeholder, so
// a trace is reproducible and can be compared against a golden file.
package harness
