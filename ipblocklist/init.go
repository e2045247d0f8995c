// Package ipblocklist contains default implementation of the
// [gatelib.IPBlocklist] for influxgate.
//
// Lists are static: they are built once from CIDRs of the
// configuration file and never updated.
package ipblocklist
