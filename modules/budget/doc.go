// Package budget is the household-budgeting domain: expense and income
// categories, transaction records, and monthly summaries with budget
// tracking. Amounts are decimal throughout; float arithmetic never touches
// money.
package budget
