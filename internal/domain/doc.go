// Package domain contains the core business entities of the application:
// lessons, their generated sections, the progress records that track a
// lesson's background generation, and the improvement jobs that rewrite a
// single section. Entities validate themselves on construction and on
// mutation, keeping persistence and transport layers free of business rules.
package domain
