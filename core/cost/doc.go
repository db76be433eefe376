// Package cost prices token usage. [ModelCost] holds per-million-token rates
// for one model; [Table] maps model names to rates and is what the client
// uses to put a dollar figure on every attempt, failed ones included.
package cost
