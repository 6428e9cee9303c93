// Package prebuilt holds the reusable pieces of tool-calling agents: a
// ToolNode that executes requested tools, ToolsCondition for routing, and
// BindTools to offer tool definitions to a model on every call.
package prebuilt
