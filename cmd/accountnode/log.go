package main

import (
	"github.com/daglabs/accountchain/logger"
	"github.com/daglabs/accountchain/util/panics"
)

var log, _ = logger.Get(logger.SubsystemTags.NODE)
var spawn = panics.GoroutineWrapperFunc(log)
