// Package hcl is the HCL implementation of config.Loader. It parses
// manifest files, decodes them into the schema structs and translates the
// result, types and literal values included, into a config.Model.
//
// A manifest looks like this:
//
//	enum "proto" {
//	  values = { tcp = 0, udp = 1 }
//	}
//
//	record "conn" {
//	  field "id" { type = string }
//	  field "parent" {
//	    type = conn
//	    attr "optional" {}
//	  }
//	}
//
//	constant "ports" {
//	  type  = table(count, proto)
//	  value = { "22" = "tcp", "53" = "udp" }
//	}
package hcl
