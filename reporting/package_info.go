// Package reporting turns the events of a test run into output for people: colored console
// progress, Allure result files, and the step/attachment helpers that tests use to explain
// what they did.
package reporting
