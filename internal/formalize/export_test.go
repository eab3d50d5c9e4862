package formalize

// Function exports for unit testing internal logic.
var Split = split
