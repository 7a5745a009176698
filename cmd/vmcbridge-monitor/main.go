// vmcbridge-monitor listens on a VMC port and prints decoded traffic, for
// checking what a receiver would see. It decodes with an independent OSC
// implementation so it also catches framing mistakes in the sender.
package main

import (
	"flag"
	"fmt"

	"github.com/hypebeast/go-osc/osc"
	"go.uber.org/zap"

	"vmcbridge/pkg/vmc"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:39539", "address to listen on")
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	zap.ReplaceGlobals(logger)
	defer logger.Sync()

	dispatcher := osc.NewStandardDispatcher()
	for _, address := range []string{
		vmc.AddrAvailable,
		vmc.AddrTime,
		vmc.AddrRootPos,
		vmc.AddrBonePos,
		vmc.AddrBlendVal,
		vmc.AddrBlendApply,
	} {
		address := address
		if err := dispatcher.AddMsgHandler(address, func(msg *osc.Message) {
			fmt.Printf("%-22s %v\n", address, msg.Arguments)
		}); err != nil {
			logger.Fatal("register handler", zap.String("address", address), zap.Error(err))
		}
	}

	server := &osc.Server{Addr: *addr, Dispatcher: dispatcher}
	logger.Info("listening for VMC traffic", zap.String("addr", *addr))
	if err := server.ListenAndServe(); err != nil {
		logger.Fatal("serve", zap.Error(err))
	}
}
