// Package tls builds the HTTPS configuration of the hello server.
//
// The certificate is served through tls.Config.GetCertificate from a
// CertificateReloader, which re-reads the certificate and key files when
// their modification times change. A renewed certificate is picked up
// without restarting the server; a broken one is logged and the previous
// certificate stays in use.
//
//	reloader := tls.NewCertificateReloader(cfg.CertFile, cfg.KeyFile, cfg.ReloadInterval, logger)
//	if err := reloader.Load(); err != nil {
//	    return err
//	}
//	tlsCfg, err := tls.NewServerConfig(cfg, reloader)
//	ln = cryptotls.NewListener(ln, tlsCfg)
//	go reloader.Run(ctx)
package tls
