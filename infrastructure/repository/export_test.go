package repository

var WrapExecErrorForTest = wrapExecError
