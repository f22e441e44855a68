// Package wizard is the reference model of the booking wizard that the
// compiled form runs in the browser.
//
// The wizard state is a plain serializable State value. Every user action
// is a pure transition, Machine.Apply(state, action), that returns a new
// state and the side effects to perform; nothing here touches the network.
// The embedded runtime emitted by package compiler mirrors these rules, and
// the scenario harness drives this model to pin them down.
//
// Phases:
//
//	idle ─select_menu─▶ menu_chosen ─pick─▶ date_chosen ─pick_time─▶ ready_to_submit
//	  │                                                                  │ submit
//	  └─select_menu (has submenu)─▶ awaiting_submenu ─select_submenu─▶ submenu_chosen
//	                                                                     ▼
//	                                              submitting ─delivered─▶ submitted
package wizard
