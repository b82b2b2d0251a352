package server

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/health", s.handleHealth)

	s.router.GET("/captcha", s.handleCaptcha)
	s.router.POST("/signup", s.handleSignup)
	s.router.POST("/login", s.handleLogin)
	s.router.POST("/refresh", s.handleRefresh)

	s.router.POST("/conversations/:id/join", s.handleJoinConversation)
	s.router.POST("/conversations/:id/leave", s.handleLeaveConversation)
	s.router.GET("/chat", s.handleChat)
}
