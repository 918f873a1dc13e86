// SPDX-License-Identifier: MPL-2.0

// Package modpath converts between filesystem paths inside an addon package
// and the dotted module paths used to identify addon modules.
//
// A Root pairs the directory that contains the addon package with the name of
// the package folder itself. For an addon at /opt/app/addons/hello, the root is
// {Path: "/opt/app/addons", DirName: "hello"} and the file
// /opt/app/addons/hello/operators/sub/greet.go maps to the module path
// "hello.operators.sub.greet".
//
// All conversions except NewRoot are pure string transformations.
package modpath
