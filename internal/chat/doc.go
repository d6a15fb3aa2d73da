// ABOUTME: Package doc for the conversation coordination layer
// ABOUTME: Explains the log/registry/service split and the ordering model

// Package chat coordinates user-to-assistant conversations.
//
// Three pieces cooperate:
//
//   - Log: the append-only durable record. Message order comes from the
//     store's insert sequence; indices are derived positions computed at
//     read time, never stored.
//   - Registry: live reasoner sessions, one per user at most. Each entry's
//     mutex is the per-user critical section, so two turns for the same
//     user can never interleave. Sessions are a cache: an idle-TTL and LRU
//     sweep evicts them freely, and the next message rebuilds the session
//     from the durable log.
//   - Service: the coordinator. It opens conversations exactly once per
//     user, records the outbound message before transmitting it, and marks
//     the recorded message failed when the reasoner errors so derived
//     indices stay gap-free.
package chat
