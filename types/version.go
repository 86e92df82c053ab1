package types

// Version is the canonical contract version shared by the control API,
// worker, and CLI. Event payloads and plan documents are versioned
// independently via their own "version" field.
const Version = "0.1.0"
