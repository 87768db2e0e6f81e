// Package notify is the notification sink of a scanner station.
//
// A Board keeps the notifications that are currently visible. Emit appends
// one and schedules its removal after the board's time to live, so several
// notifications can be visible at the same time and stack in emission
// order. Message text is never deduplicated.
//
// StatusLine holds the single line of status text (for example
// "Looking up D42…"), and TerminalRenderer prints board, status and card
// changes to a terminal with severity colours.
package notify
