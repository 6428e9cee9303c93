// Package tool provides the tools the lesson agents call.
//
// The arithmetic helpers Multiply, Add, Subtract and Divide are exposed as
// function tools taking {"a": int, "b": int}. TavilySearch queries the
// Tavily web search API.
//
//	tools := tool.ArithmeticTools()
//	defs := tool.Definitions(tools...) // for llms.WithTools
package tool
