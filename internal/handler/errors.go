package handler

import "errors"

// Pipeline failures. All of them are recoverable by the caller.
var (
	ErrUnsupportedCodec      = errors.New("handler: unsupported codec")
	ErrUnsupportedConversion = errors.New("handler: unsupported conversion")
	ErrNoImageProduced       = errors.New("handler: no image decoded")
	ErrConversionFailed      = errors.New("handler: conversion failed")
	ErrIO                    = errors.New("handler: could not read source")
	ErrNotSupported          = errors.New("handler: not supported")
)
