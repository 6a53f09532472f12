package statement

type Options struct {
	convertFunc func(value interface{}) interface{}
	idAllocator IDAllocator
}

// The default options.
var DefaultOptions = Options{}

// WithConvertFunc creates a new option object with a given convert function.
//
// The convert function is applied by Map and Apply to every descriptor node and
// document value they look at. This can be used to support additional types by
// converting them into one of the supported types.
func (options Options) WithConvertFunc(convertFunc func(value interface{}) interface{}) Options {
	options.convertFunc = convertFunc
	return options
}

// WithIDAllocator creates a new option object which assigns ids of added
// records with the given allocator instead of MaxPlusOne.
func (options Options) WithIDAllocator(allocator IDAllocator) Options {
	options.idAllocator = allocator
	return options
}

func (options *Options) convert(value interface{}) interface{} {
	if options.convertFunc != nil {
		return options.convertFunc(value)
	}
	return value
}

func (options *Options) allocator() IDAllocator {
	if options.idAllocator != nil {
		return options.idAllocator
	}
	return MaxPlusOne
}
